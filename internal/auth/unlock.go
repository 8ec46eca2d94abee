package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	cr "github.com/Techspire/trinity-wallet/internal/crypto"
	"github.com/Techspire/trinity-wallet/internal/storage"
)

// AliasKDF is where the vault-key salt and passphrase verifier live.
const AliasKDF = "kdf"

var (
	ErrNotInitialized     = errors.New("auth: vault not initialized")
	ErrAlreadyInitialized = errors.New("auth: vault already initialized")
	ErrBadPassphrase      = errors.New("auth: wrong passphrase")
	ErrEmptyPassphrase    = errors.New("auth: empty passphrase")
)

type kdfRecord struct {
	Version  int    `json:"version"`
	Salt     string `json:"salt"`
	Memory   uint32 `json:"m"`
	Time     uint32 `json:"t"`
	Threads  uint8  `json:"p"`
	Verifier string `json:"verifier"`
}

// Keys turns passphrases into vault keys using the salt and cost recorded
// at Init time.
type Keys struct {
	store    storage.BlobStore
	verifier VerifierParams
}

func NewKeys(store storage.BlobStore) *Keys {
	return &Keys{store: store, verifier: DefaultVerifier}
}

// WithVerifierParams overrides the verifier cost. Tests use it to stay fast.
func (k *Keys) WithVerifierParams(p VerifierParams) *Keys {
	k.verifier = p
	return k
}

// Initialized reports whether Init has run against the store.
func (k *Keys) Initialized(ctx context.Context) (bool, error) {
	_, err := k.store.Get(ctx, AliasKDF)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	}
	return false, err
}

// Init records a fresh salt, the KDF cost in p and a verifier for
// passphrase. p.Salt is ignored.
func (k *Keys) Init(ctx context.Context, passphrase []byte, p cr.KDFParams) error {
	if len(passphrase) == 0 {
		return ErrEmptyPassphrase
	}
	ok, err := k.Initialized(ctx)
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyInitialized
	}

	salt, err := cr.NewSalt()
	if err != nil {
		return err
	}
	verifier, err := HashPassphrase(k.verifier, passphrase)
	if err != nil {
		return err
	}
	rec, err := json.Marshal(kdfRecord{
		Version:  1,
		Salt:     cr.EncodeSalt(salt),
		Memory:   p.M,
		Time:     p.T,
		Threads:  p.P,
		Verifier: verifier,
	})
	if err != nil {
		return err
	}
	return k.store.Put(ctx, AliasKDF, rec)
}

// Derive checks passphrase against the stored verifier and returns the
// vault key. The caller wipes it with crypto.WipeKey.
func (k *Keys) Derive(ctx context.Context, passphrase []byte) ([32]byte, error) {
	var key [32]byte
	if len(passphrase) == 0 {
		return key, ErrEmptyPassphrase
	}
	raw, err := k.store.Get(ctx, AliasKDF)
	if errors.Is(err, storage.ErrNotFound) {
		return key, ErrNotInitialized
	}
	if err != nil {
		return key, err
	}

	var rec kdfRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return key, fmt.Errorf("auth: decode kdf record: %w", err)
	}
	if rec.Version != 1 {
		return key, fmt.Errorf("auth: unsupported kdf record version %d", rec.Version)
	}
	salt, err := cr.DecodeSalt(rec.Salt)
	if err != nil {
		return key, fmt.Errorf("auth: decode salt: %w", err)
	}

	ok, err := VerifyPassphrase(passphrase, rec.Verifier)
	if err != nil {
		return key, err
	}
	if !ok {
		return key, ErrBadPassphrase
	}
	return cr.DeriveVaultKey(passphrase, cr.KDFParams{M: rec.Memory, T: rec.Time, P: rec.Threads, Salt: salt}), nil
}
