package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	cr "github.com/Techspire/trinity-wallet/internal/crypto"
	"github.com/Techspire/trinity-wallet/internal/derivation"
	"github.com/Techspire/trinity-wallet/internal/mnemonic"
	"github.com/Techspire/trinity-wallet/internal/seedvault"
)

// readSeed prompts for a mnemonic (or a hex seed) and returns the binary
// seed. The phrase buffer is wiped before returning.
func readSeed(rawHex, withPassphrase bool) (seedvault.Seed, error) {
	if rawHex {
		b, err := readSecret("Seed (hex): ")
		if err != nil {
			return nil, err
		}
		defer cr.Zero(b)
		return decodeHexSeed(string(b))
	}

	phrase, err := readSecret("Recovery phrase: ")
	if err != nil {
		return nil, err
	}
	defer cr.Zero(phrase)

	var pass []byte
	if withPassphrase {
		if pass, err = readSecret("BIP39 passphrase: "); err != nil {
			return nil, err
		}
		defer cr.Zero(pass)
	}
	seed, err := mnemonic.ToSeed(string(phrase), string(pass))
	if err != nil {
		return nil, err
	}
	return seedvault.Seed(seed), nil
}

func decodeHexSeed(s string) (seedvault.Seed, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	if len(b) == 0 {
		return nil, seedvault.ErrEmptySeed
	}
	return seedvault.Seed(b), nil
}

func confirm(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N] ", question)
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// parseTransfers reads address:value pairs.
func parseTransfers(specs []string) ([]derivation.Transfer, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: at least one --to is required", derivation.ErrInvalidTransfer)
	}
	out := make([]derivation.Transfer, 0, len(specs))
	for _, s := range specs {
		i := strings.LastIndexByte(s, ':')
		if i <= 0 {
			return nil, fmt.Errorf("%w: %q is not address:value", derivation.ErrInvalidTransfer, s)
		}
		value, err := strconv.ParseInt(s[i+1:], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value in %q: %v", derivation.ErrInvalidTransfer, s, err)
		}
		out = append(out, derivation.Transfer{Address: s[:i], Value: value})
	}
	return out, nil
}

// parseInputs reads txid:vout:value:security:index[:change].
func parseInputs(specs []string) ([]derivation.Input, error) {
	if len(specs) == 0 {
		return nil, derivation.ErrNoInputs
	}
	out := make([]derivation.Input, 0, len(specs))
	for _, s := range specs {
		in, err := parseInput(s)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", s, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func parseInput(s string) (derivation.Input, error) {
	parts := strings.Split(s, ":")
	var in derivation.Input
	switch {
	case len(parts) == 6 && parts[5] == "change":
		in.Change = true
	case len(parts) != 5:
		return in, fmt.Errorf("want txid:vout:value:security:index[:change]")
	}

	in.TxID = parts[0]
	vout, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return in, fmt.Errorf("vout: %w", err)
	}
	in.Vout = uint32(vout)
	if in.Value, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
		return in, fmt.Errorf("value: %w", err)
	}
	if in.Security, err = strconv.Atoi(parts[3]); err != nil {
		return in, fmt.Errorf("security: %w", err)
	}
	index, err := strconv.ParseUint(parts[4], 10, 31)
	if err != nil {
		return in, fmt.Errorf("index: %w", err)
	}
	in.Index = uint32(index)
	return in, nil
}
