// Package derivation is the only path by which seed material reaches key
// derivation. A Gateway borrows the current account's seed from the vault for
// the length of one Engine call and wipes it afterwards.
package derivation

import "errors"

// Security levels select the script family of derived addresses.
const (
	SecurityLegacy       = 1 // P2PKH, BIP44
	SecurityNestedSegwit = 2 // P2SH-P2WPKH, BIP49
	SecuritySegwit       = 3 // P2WPKH, BIP84
)

var (
	ErrInvalidSecurity   = errors.New("derivation: security level must be 1, 2 or 3")
	ErrInvalidTotal      = errors.New("derivation: total must not be negative")
	ErrInvalidIndex      = errors.New("derivation: index must be below 2^31")
	ErrInvalidAmount     = errors.New("derivation: amount exceeds the 21M BTC supply")
	ErrInvalidTransfer   = errors.New("derivation: invalid transfer")
	ErrNoInputs          = errors.New("derivation: no inputs to spend")
	ErrUnsupportedInput  = errors.New("derivation: legacy inputs cannot be signed without the previous transaction")
	ErrInsufficientFunds = errors.New("derivation: inputs do not cover outputs and fee")
)

type Address struct {
	Index    uint32 `json:"index"`
	Security int    `json:"security"`
	Path     string `json:"path"`
	Address  string `json:"address"`
}

// Transfer pays Value satoshis to Address.
type Transfer struct {
	Address string `json:"address"`
	Value   int64  `json:"value"`
}

// Input is an unspent output owned by the account, located by the branch
// and index of the address that received it.
type Input struct {
	TxID     string `json:"txid"`
	Vout     uint32 `json:"vout"`
	Value    int64  `json:"value"`
	Security int    `json:"security"`
	Change   bool   `json:"change,omitempty"`
	Index    uint32 `json:"index"`
}

type TransferOptions struct {
	Inputs []Input `json:"inputs"`
	// FeeRate is in sat/vbyte. Zero uses the engine default.
	FeeRate int64 `json:"fee_rate,omitempty"`
	// ChangeSecurity defaults to SecuritySegwit.
	ChangeSecurity int    `json:"change_security,omitempty"`
	ChangeIndex    uint32 `json:"change_index,omitempty"`
}

// PreparedBundle is a fully signed transaction ready for broadcast.
type PreparedBundle struct {
	PSBT  string `json:"psbt"`
	RawTx string `json:"raw_tx"`
	TxID  string `json:"txid"`
	Fee   int64  `json:"fee"`
}

// Engine turns a seed into addresses and signed transfers. Implementations
// must not retain seed beyond the call.
type Engine interface {
	DeriveAddress(seed []byte, index uint32, security int) (Address, error)
	DeriveAddresses(seed []byte, index uint32, security, total int) ([]Address, error)
	PrepareTransfers(seed []byte, transfers []Transfer, opts TransferOptions) (*PreparedBundle, error)
}

func validSecurity(s int) bool {
	return s >= SecurityLegacy && s <= SecuritySegwit
}
