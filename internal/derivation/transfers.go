package derivation

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Virtual sizes used for fee estimation. Signatures are assumed to be the
// maximum 72 bytes, so estimates never undershoot.
const (
	txOverheadVSize   = 11
	p2wpkhInputVSize  = 68
	nestedInputVSize  = 91
	outputBaseVSize   = 9
	defaultChangeKind = SecuritySegwit
)

// signer holds what is needed to spend one input.
type signer struct {
	priv     *btcec.PrivateKey
	pub      []byte
	value    int64
	pkScript []byte
	redeem   []byte
}

type branchID struct {
	security int
	branch   uint32
}

// keyring caches branch keys for the duration of one PrepareTransfers call.
type keyring struct {
	e       *HDEngine
	seed    []byte
	keys    map[branchID]*hdkeychain.ExtendedKey
	signers []*signer
}

func (r *keyring) branch(security int, branch uint32) (*hdkeychain.ExtendedKey, error) {
	id := branchID{security, branch}
	if k, ok := r.keys[id]; ok {
		return k, nil
	}
	k, err := r.e.branchKey(r.seed, security, branch)
	if err != nil {
		return nil, err
	}
	r.keys[id] = k
	return k, nil
}

func (r *keyring) zero() {
	for _, k := range r.keys {
		k.Zero()
	}
	for _, s := range r.signers {
		s.priv.Zero()
	}
}

// script derives the output script for security/branch/index, and the
// signing key when withKey is set.
func (r *keyring) script(security int, branch, index uint32, withKey bool) (*signer, error) {
	if err := checkIndexes(index, 1); err != nil {
		return nil, err
	}
	bk, err := r.branch(security, branch)
	if err != nil {
		return nil, err
	}
	child, err := bk.Derive(index)
	if err != nil {
		return nil, fmt.Errorf("derivation: derive index %d: %w", index, err)
	}
	defer child.Zero()

	pub, err := child.ECPubKey()
	if err != nil {
		return nil, err
	}
	_, pkScript, redeem, err := r.e.scripts(pub, security)
	if err != nil {
		return nil, err
	}
	s := &signer{pub: pub.SerializeCompressed(), pkScript: pkScript, redeem: redeem}
	if withKey {
		if s.priv, err = child.ECPrivKey(); err != nil {
			return nil, err
		}
		r.signers = append(r.signers, s)
	}
	return s, nil
}

func estimateVSize(signers []*signer, outputs []*wire.TxOut) int64 {
	n := int64(txOverheadVSize)
	for _, s := range signers {
		if s.redeem != nil {
			n += nestedInputVSize
		} else {
			n += p2wpkhInputVSize
		}
	}
	for _, o := range outputs {
		n += outputBaseVSize + int64(len(o.PkScript))
	}
	return n
}

// PrepareTransfers builds, signs and finalizes a PSBT spending opts.Inputs
// to transfers. Change above DustLimit goes to the change branch at
// opts.ChangeIndex; anything smaller is left to the fee.
func (e *HDEngine) PrepareTransfers(seed []byte, transfers []Transfer, opts TransferOptions) (*PreparedBundle, error) {
	if len(opts.Inputs) == 0 {
		return nil, ErrNoInputs
	}
	if len(transfers) == 0 {
		return nil, fmt.Errorf("%w: no transfers", ErrInvalidTransfer)
	}
	feeRate := opts.FeeRate
	if feeRate <= 0 {
		feeRate = e.feeRate
	}
	if feeRate > MaxFeeRate {
		return nil, fmt.Errorf("%w: fee rate %d above %d sat/vbyte", ErrInvalidTransfer, feeRate, MaxFeeRate)
	}
	changeSecurity := opts.ChangeSecurity
	if changeSecurity == 0 {
		changeSecurity = defaultChangeKind
	}
	if !validSecurity(changeSecurity) {
		return nil, fmt.Errorf("%w: change security %d", ErrInvalidSecurity, changeSecurity)
	}

	outputs := make([]*wire.TxOut, 0, len(transfers)+1)
	var totalOut int64
	for i, t := range transfers {
		if t.Value <= 0 {
			return nil, fmt.Errorf("%w: transfer %d: value must be positive", ErrInvalidTransfer, i)
		}
		if t.Value > btcutil.MaxSatoshi || totalOut > btcutil.MaxSatoshi-t.Value {
			return nil, fmt.Errorf("%w: transfer %d", ErrInvalidAmount, i)
		}
		addr, err := btcutil.DecodeAddress(t.Address, e.params)
		if err != nil {
			return nil, fmt.Errorf("%w: transfer %d: %v", ErrInvalidTransfer, i, err)
		}
		if !addr.IsForNet(e.params) {
			return nil, fmt.Errorf("%w: transfer %d: address is not for %s", ErrInvalidTransfer, i, e.params.Name)
		}
		script, err := txscript.PayToAddrScript(addr)
		if err != nil {
			return nil, fmt.Errorf("%w: transfer %d: %v", ErrInvalidTransfer, i, err)
		}
		outputs = append(outputs, wire.NewTxOut(t.Value, script))
		totalOut += t.Value
	}

	ring := &keyring{e: e, seed: seed, keys: make(map[branchID]*hdkeychain.ExtendedKey)}
	defer ring.zero()

	outpoints := make([]*wire.OutPoint, 0, len(opts.Inputs))
	sequences := make([]uint32, 0, len(opts.Inputs))
	signers := make([]*signer, 0, len(opts.Inputs))
	seen := make(map[wire.OutPoint]struct{}, len(opts.Inputs))
	var totalIn int64
	for i, in := range opts.Inputs {
		switch {
		case in.Security == SecurityLegacy:
			return nil, fmt.Errorf("%w: input %d", ErrUnsupportedInput, i)
		case !validSecurity(in.Security):
			return nil, fmt.Errorf("%w: input %d: %d", ErrInvalidSecurity, i, in.Security)
		case in.Value <= 0:
			return nil, fmt.Errorf("%w: input %d: value must be positive", ErrInvalidTransfer, i)
		case in.Value > btcutil.MaxSatoshi || totalIn > btcutil.MaxSatoshi-in.Value:
			return nil, fmt.Errorf("%w: input %d", ErrInvalidAmount, i)
		}
		hash, err := chainhash.NewHashFromStr(in.TxID)
		if err != nil {
			return nil, fmt.Errorf("%w: input %d: %v", ErrInvalidTransfer, i, err)
		}
		op := wire.NewOutPoint(hash, in.Vout)
		if _, dup := seen[*op]; dup {
			return nil, fmt.Errorf("%w: input %d spends %s twice", ErrInvalidTransfer, i, op)
		}
		seen[*op] = struct{}{}

		branch := uint32(branchExternal)
		if in.Change {
			branch = branchChange
		}
		s, err := ring.script(in.Security, branch, in.Index, true)
		if err != nil {
			return nil, err
		}
		s.value = in.Value
		signers = append(signers, s)
		outpoints = append(outpoints, op)
		sequences = append(sequences, wire.MaxTxInSequenceNum)
		totalIn += in.Value
	}

	change, err := ring.script(changeSecurity, branchChange, opts.ChangeIndex, false)
	if err != nil {
		return nil, err
	}
	changeOut := wire.NewTxOut(0, change.pkScript)
	fee := feeRate * estimateVSize(signers, append(outputs, changeOut))
	if rest := totalIn - totalOut - fee; rest > DustLimit {
		changeOut.Value = rest
		outputs = append(outputs, changeOut)
	} else {
		need := feeRate * estimateVSize(signers, outputs)
		if totalIn-totalOut < need {
			return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, totalIn, totalOut+need)
		}
		fee = totalIn - totalOut
	}

	packet, err := psbt.New(outpoints, outputs, 2, 0, sequences)
	if err != nil {
		return nil, fmt.Errorf("derivation: new psbt: %w", err)
	}
	if err := sign(packet, signers); err != nil {
		return nil, err
	}
	if err := psbt.MaybeFinalizeAll(packet); err != nil {
		return nil, fmt.Errorf("derivation: finalize: %w", err)
	}
	tx, err := psbt.Extract(packet)
	if err != nil {
		return nil, fmt.Errorf("derivation: extract: %w", err)
	}

	var raw bytes.Buffer
	if err := tx.Serialize(&raw); err != nil {
		return nil, err
	}
	encoded, err := packet.B64Encode()
	if err != nil {
		return nil, err
	}
	return &PreparedBundle{
		PSBT:  encoded,
		RawTx: hex.EncodeToString(raw.Bytes()),
		TxID:  tx.TxHash().String(),
		Fee:   fee,
	}, nil
}

func sign(packet *psbt.Packet, signers []*signer) error {
	u, err := psbt.NewUpdater(packet)
	if err != nil {
		return err
	}

	prevouts := make(map[wire.OutPoint]*wire.TxOut, len(signers))
	for i, s := range signers {
		utxo := wire.NewTxOut(s.value, s.pkScript)
		if err := u.AddInWitnessUtxo(utxo, i); err != nil {
			return fmt.Errorf("derivation: input %d: %w", i, err)
		}
		prevouts[packet.UnsignedTx.TxIn[i].PreviousOutPoint] = utxo
	}

	tx := packet.UnsignedTx
	hashes := txscript.NewTxSigHashes(tx, txscript.NewMultiPrevOutFetcher(prevouts))
	for i, s := range signers {
		script := s.pkScript
		if s.redeem != nil {
			script = s.redeem
		}
		sig, err := txscript.RawTxInWitnessSignature(tx, hashes, i, s.value, script, txscript.SigHashAll, s.priv)
		if err != nil {
			return fmt.Errorf("derivation: sign input %d: %w", i, err)
		}
		outcome, err := u.Sign(i, sig, s.pub, s.redeem, nil)
		if err != nil {
			return fmt.Errorf("derivation: sign input %d: %w", i, err)
		}
		if outcome != psbt.SignSuccesful {
			return fmt.Errorf("derivation: sign input %d: outcome %d", i, outcome)
		}
	}
	return nil
}
