package crypto

import (
	"crypto/sha256"
	"errors"
)

// The first byte of every sealed envelope names the construction used for
// the rest of it. 0x01 is reserved and rejected.
const (
	EnvelopeV2 byte = 0x02 // XChaCha20-Poly1305

	KeySize = 32
)

var (
	ErrEmptyKey           = errors.New("crypto: empty key")
	ErrInvalidKeySize     = errors.New("crypto: key must be 32 bytes")
	ErrCiphertextTooShort = errors.New("crypto: ciphertext too short")
	ErrInvalidMAC         = errors.New("crypto: message authentication failed")
	ErrUnknownVersion     = errors.New("crypto: unknown envelope version")
)

// Primitives is the set of operations the seed vault needs from the
// cryptography layer: a deterministic one-way hash for account names and an
// authenticated encryption envelope.
type Primitives interface {
	Hash(data []byte) []byte
	Seal(key, plaintext, aad []byte) ([]byte, error)
	Open(key, envelope, aad []byte) ([]byte, error)
}

type versioned struct{}

// DefaultPrimitives returns SHA-256 hashing and the versioned envelope.
func DefaultPrimitives() Primitives { return versioned{} }

func (versioned) Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func (versioned) Seal(key, plaintext, aad []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	body, err := SealX(key, plaintext, aad)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+len(body))
	out = append(out, EnvelopeV2)
	return append(out, body...), nil
}

func (versioned) Open(key, envelope, aad []byte) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if len(envelope) < 1 {
		return nil, ErrCiphertextTooShort
	}
	if envelope[0] != EnvelopeV2 {
		return nil, ErrUnknownVersion
	}
	return OpenX(key, envelope[1:], aad)
}

func checkKey(key []byte) error {
	switch {
	case len(key) == 0:
		return ErrEmptyKey
	case len(key) != KeySize:
		return ErrInvalidKeySize
	}
	return nil
}
