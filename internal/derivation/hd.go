package derivation

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

const (
	branchExternal = 0
	branchChange   = 1

	// DefaultFeeRate is used when TransferOptions.FeeRate is zero.
	DefaultFeeRate = 2
	// DustLimit is the smallest change output worth creating.
	DustLimit = 546
	// MaxFeeRate matches bitcoind's default -maxfeerate of 0.1 BTC/kvB.
	MaxFeeRate = 10000
	// MaxTotal bounds DeriveAddresses.
	MaxTotal = 1000
)

// HDEngine derives BIP32 keys from a seed along the BIP44/49/84 account 0
// paths for its network.
type HDEngine struct {
	params  *chaincfg.Params
	feeRate int64
}

func NewHDEngine(params *chaincfg.Params) *HDEngine {
	if params == nil {
		params = &chaincfg.MainNetParams
	}
	return &HDEngine{params: params, feeRate: DefaultFeeRate}
}

// WithFeeRate sets the sat/vbyte rate used when a transfer names none.
func (e *HDEngine) WithFeeRate(rate int64) *HDEngine {
	if rate > 0 {
		e.feeRate = rate
	}
	return e
}

// Params returns the network the engine encodes addresses for.
func (e *HDEngine) Params() *chaincfg.Params { return e.params }

func purpose(security int) (uint32, error) {
	switch security {
	case SecurityLegacy:
		return 44, nil
	case SecurityNestedSegwit:
		return 49, nil
	case SecuritySegwit:
		return 84, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidSecurity, security)
}

// checkIndexes rejects ranges reaching into the hardened half of the
// index space, including ranges that would wrap past 2^32-1.
func checkIndexes(index uint32, total int) error {
	last := uint64(index) + uint64(total) - 1
	if total < 1 {
		last = uint64(index)
	}
	if last >= hdkeychain.HardenedKeyStart {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, last)
	}
	return nil
}

func (e *HDEngine) path(security int, branch, index uint32) string {
	p, _ := purpose(security)
	return fmt.Sprintf("m/%d'/%d'/0'/%d/%d", p, e.params.HDCoinType, branch, index)
}

// branchKey walks m/purpose'/coin'/0'/branch. Intermediate keys are zeroed.
func (e *HDEngine) branchKey(seed []byte, security int, branch uint32) (*hdkeychain.ExtendedKey, error) {
	p, err := purpose(security)
	if err != nil {
		return nil, err
	}
	master, err := hdkeychain.NewMaster(seed, e.params)
	if err != nil {
		return nil, fmt.Errorf("derivation: master key: %w", err)
	}

	k := master
	for _, i := range []uint32{
		hdkeychain.HardenedKeyStart + p,
		hdkeychain.HardenedKeyStart + e.params.HDCoinType,
		hdkeychain.HardenedKeyStart,
		branch,
	} {
		child, err := k.Derive(i)
		k.Zero()
		if err != nil {
			return nil, fmt.Errorf("derivation: derive child %d: %w", i, err)
		}
		k = child
	}
	return k, nil
}

// scripts returns the output script paying pub under security and, for
// nested segwit, the redeem script it commits to.
func (e *HDEngine) scripts(pub *btcec.PublicKey, security int) (addr btcutil.Address, pkScript, redeem []byte, err error) {
	hash := btcutil.Hash160(pub.SerializeCompressed())
	switch security {
	case SecurityLegacy:
		addr, err = btcutil.NewAddressPubKeyHash(hash, e.params)
	case SecuritySegwit:
		addr, err = btcutil.NewAddressWitnessPubKeyHash(hash, e.params)
	case SecurityNestedSegwit:
		var wpkh *btcutil.AddressWitnessPubKeyHash
		if wpkh, err = btcutil.NewAddressWitnessPubKeyHash(hash, e.params); err != nil {
			break
		}
		if redeem, err = txscript.PayToAddrScript(wpkh); err != nil {
			break
		}
		addr, err = btcutil.NewAddressScriptHash(redeem, e.params)
	default:
		err = fmt.Errorf("%w: %d", ErrInvalidSecurity, security)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	pkScript, err = txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, nil, nil, err
	}
	return addr, pkScript, redeem, nil
}

func (e *HDEngine) address(branch *hdkeychain.ExtendedKey, security int, b, index uint32) (Address, error) {
	if err := checkIndexes(index, 1); err != nil {
		return Address{}, err
	}
	child, err := branch.Derive(index)
	if err != nil {
		return Address{}, fmt.Errorf("derivation: derive index %d: %w", index, err)
	}
	defer child.Zero()

	pub, err := child.ECPubKey()
	if err != nil {
		return Address{}, err
	}
	addr, _, _, err := e.scripts(pub, security)
	if err != nil {
		return Address{}, err
	}
	return Address{
		Index:    index,
		Security: security,
		Path:     e.path(security, b, index),
		Address:  addr.EncodeAddress(),
	}, nil
}

func (e *HDEngine) DeriveAddress(seed []byte, index uint32, security int) (Address, error) {
	branch, err := e.branchKey(seed, security, branchExternal)
	if err != nil {
		return Address{}, err
	}
	defer branch.Zero()
	return e.address(branch, security, branchExternal, index)
}

func (e *HDEngine) DeriveAddresses(seed []byte, index uint32, security, total int) ([]Address, error) {
	switch {
	case total < 0:
		return nil, ErrInvalidTotal
	case total > MaxTotal:
		return nil, fmt.Errorf("%w: at most %d addresses per call", ErrInvalidTotal, MaxTotal)
	case total == 0:
		total = 1
	}
	if err := checkIndexes(index, total); err != nil {
		return nil, err
	}

	branch, err := e.branchKey(seed, security, branchExternal)
	if err != nil {
		return nil, err
	}
	defer branch.Zero()

	out := make([]Address, 0, total)
	for i := 0; i < total; i++ {
		a, err := e.address(branch, security, branchExternal, index+uint32(i))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
