package seedvault

import (
	"context"
	"crypto/subtle"
	"errors"
)

// LoadSeeds returns a copy of the whole account map, or an error carrying
// one of ErrNoVaultData, ErrVaultKeyMismatch or ErrCorruptEnvelope. The
// caller must Wipe the result.
func (v *Vault) LoadSeeds(ctx context.Context) (AccountMap, error) {
	const op = "load"
	var out AccountMap
	err := v.withKey(op, func(key []byte) error {
		m, existed, err := v.read(ctx, op, key)
		if err != nil {
			return err
		}
		if !existed {
			return opError(op, ErrNoVaultData, nil)
		}
		out = m
		return nil
	})
	return out, err
}

// Seeds is LoadSeeds collapsed to "usable data or nil": a missing alias, a
// wrong key and a corrupt envelope all return nil. Use LoadSeeds to tell
// them apart.
func (v *Vault) Seeds(ctx context.Context) AccountMap {
	m, err := v.LoadSeeds(ctx)
	if err != nil {
		if kind := kindOf(err); kind != nil && !errors.Is(kind, ErrNoVaultData) {
			v.logger.WithField("alias", v.alias).Debugf("seeds unavailable: %v", kind)
		}
		return nil
	}
	return m
}

// HasData reports whether the vault holds a readable account map.
func (v *Vault) HasData(ctx context.Context) bool {
	m := v.Seeds(ctx)
	defer m.Wipe()
	return m != nil
}

// Accounts lists the stored account ids.
func (v *Vault) Accounts(ctx context.Context) ([]AccountID, error) {
	m, err := v.LoadSeeds(ctx)
	if err != nil {
		return nil, err
	}
	defer m.Wipe()
	return m.IDs(), nil
}

// Seed returns a copy of the current account's seed. An empty vault fails
// with ErrNoVaultData and a map without the account with ErrUnknownAccount.
func (v *Vault) Seed(ctx context.Context) (Seed, error) {
	m, err := v.LoadSeeds(ctx)
	if err != nil {
		return nil, err
	}
	defer m.Wipe()

	s, ok := m[v.CurrentAccount()]
	if !ok {
		return nil, opError("seed", ErrUnknownAccount, nil)
	}
	return s.clone(), nil
}

// WithSeed hands the current account's seed to fn and wipes it when fn
// returns. fn must not retain the slice.
func (v *Vault) WithSeed(ctx context.Context, fn func(Seed) error) error {
	s, err := v.Seed(ctx)
	if err != nil {
		return err
	}
	defer s.Wipe()
	return fn(s)
}

// IsUniqueSeed reports whether candidate is absent from every account. Each
// stored seed is compared in constant time and the loop never exits early.
// An empty vault holds no seeds, so every candidate is unique.
func (v *Vault) IsUniqueSeed(ctx context.Context, candidate Seed) (bool, error) {
	m, err := v.LoadSeeds(ctx)
	if errors.Is(err, ErrNoVaultData) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	defer m.Wipe()
	return !m.contains(candidate), nil
}

// contains compares candidate against every seed in constant time per
// entry without exiting early.
func (m AccountMap) contains(candidate Seed) bool {
	found := 0
	for _, s := range m {
		found |= subtle.ConstantTimeCompare(s, candidate)
	}
	return found != 0
}
