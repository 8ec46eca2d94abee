package crypto

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/argon2"
)

const SaltSize = 32

type KDFParams struct {
	M    uint32
	T    uint32
	P    uint8
	Salt []byte
}

func DefaultDesktopKDF() KDFParams {
	return KDFParams{M: 1024 * 1024, T: 3, P: 4}
}

func DefaultMobileKDF() KDFParams {
	return KDFParams{M: 128 * 1024, T: 3, P: 4}
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// DeriveVaultKey stretches a passphrase into a vault key with argon2id.
// The passphrase is not modified; callers zero it themselves.
func DeriveVaultKey(passphrase []byte, p KDFParams) (key [32]byte) {
	raw := argon2.IDKey(passphrase, p.Salt, p.T, p.M, p.P, KeySize)
	copy(key[:], raw)
	Zero(raw)
	return
}

// WipeKey zeroes a key returned by DeriveVaultKey.
func WipeKey(key *[32]byte) { zero32(key) }

func EncodeSalt(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeSalt(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
