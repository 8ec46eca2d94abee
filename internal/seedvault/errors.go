package seedvault

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by the vault matches exactly one of
// these with errors.Is, except raw storage I/O errors which are wrapped
// unchanged.
var (
	// ErrVaultKeyMismatch: an envelope exists but does not authenticate
	// under the vault key.
	ErrVaultKeyMismatch = errors.New("vault key mismatch")
	// ErrCorruptEnvelope: the envelope is structurally invalid or its
	// plaintext does not decode into an account map.
	ErrCorruptEnvelope = errors.New("corrupt envelope")
	// ErrNoVaultData: nothing has been stored at the alias yet.
	ErrNoVaultData = errors.New("no vault data")
	// ErrUnknownAccount: the map exists but has no entry for the account.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrStorageIntegrity: an operation that needs existing data found none.
	ErrStorageIntegrity = errors.New("storage integrity violation")

	ErrAccountExists = errors.New("account already exists")
	ErrSeedExists    = errors.New("seed already stored under an account")
	ErrEmptyKey      = errors.New("empty vault key")
	ErrInvalidKey    = errors.New("invalid vault key length")
	ErrEmptySeed     = errors.New("empty seed")
	ErrEmptyName     = errors.New("empty account name")
	ErrClosed        = errors.New("vault closed")
)

// VaultError ties an error kind to the operation that produced it and the
// underlying cause, if any.
type VaultError struct {
	Op   string
	Kind error
	Err  error
}

func (e *VaultError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("seedvault: %s: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("seedvault: %s: %v", e.Op, e.Kind)
}

func (e *VaultError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func opError(op string, kind, cause error) error {
	return &VaultError{Op: op, Kind: kind, Err: cause}
}

// kindOf reports which error kind err carries, or nil.
func kindOf(err error) error {
	var ve *VaultError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return nil
}
