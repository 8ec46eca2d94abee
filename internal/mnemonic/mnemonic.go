// Package mnemonic converts BIP-39 recovery phrases into wallet seeds.
package mnemonic

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// SeedSize is the length of a BIP-39 seed in bytes.
const SeedSize = 64

var (
	ErrInvalidMnemonic = errors.New("mnemonic: invalid phrase")
	ErrInvalidBits     = errors.New("mnemonic: entropy must be 128-256 bits in steps of 32")
)

// New returns a fresh phrase backed by bits of entropy. 128 bits gives 12
// words, 256 bits gives 24.
func New(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("%w: %d", ErrInvalidBits, bits)
	}
	defer zero(entropy)

	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("mnemonic: encode: %w", err)
	}
	return phrase, nil
}

// Normalize lowercases phrase and collapses runs of whitespace.
func Normalize(phrase string) string {
	return strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
}

// Validate checks the word list and checksum of phrase.
func Validate(phrase string) error {
	if !bip39.IsMnemonicValid(Normalize(phrase)) {
		return ErrInvalidMnemonic
	}
	return nil
}

// ToSeed derives the 64-byte seed for phrase and passphrase. The caller owns
// the result and should wipe it once stored.
func ToSeed(phrase, passphrase string) ([]byte, error) {
	phrase = Normalize(phrase)
	if phrase == "" {
		return nil, ErrInvalidMnemonic
	}
	seed, err := bip39.NewSeedWithErrorChecking(phrase, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	return seed, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
