package seedvault

import (
	"context"
	"errors"
	"fmt"

	cr "github.com/Techspire/trinity-wallet/internal/crypto"
	"github.com/Techspire/trinity-wallet/internal/storage"
)

// policy transforms the current account map into the one to persist.
// existed is false when nothing was stored at the alias; m is then empty.
type policy func(m AccountMap, existed bool) (AccountMap, error)

// update runs one read-decrypt-modify-encrypt-write cycle under the alias
// lock. The store only sees the final Put, so a failure anywhere earlier
// leaves the previous envelope in place.
func (v *Vault) update(ctx context.Context, op string, apply policy) error {
	mu := lockFor(v.store, v.alias)
	mu.Lock()
	defer mu.Unlock()

	return v.withKey(op, func(key []byte) error {
		m, existed, err := v.read(ctx, op, key)
		if err != nil {
			return err
		}
		defer m.Wipe()

		next, err := apply(m, existed)
		if err != nil {
			return err
		}
		return v.write(ctx, op, key, next)
	})
}

// read loads and opens the envelope. A missing alias yields an empty map
// and existed=false; every other failure is classified.
func (v *Vault) read(ctx context.Context, op string, key []byte) (AccountMap, bool, error) {
	blob, err := v.store.Get(ctx, v.alias)
	if errors.Is(err, storage.ErrNotFound) {
		return AccountMap{}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("seedvault: %s: read %s: %w", op, v.alias, err)
	}

	pt, err := v.prims.Open(key, blob, v.aad())
	if err != nil {
		if errors.Is(err, cr.ErrInvalidMAC) {
			return nil, true, opError(op, ErrVaultKeyMismatch, err)
		}
		return nil, true, opError(op, ErrCorruptEnvelope, err)
	}
	defer cr.Zero(pt)

	m, err := decodeMap(pt)
	if err != nil {
		return nil, true, opError(op, ErrCorruptEnvelope, err)
	}
	return m, true, nil
}

func (v *Vault) write(ctx context.Context, op string, key []byte, m AccountMap) error {
	pt, err := encodeMap(m)
	if err != nil {
		return fmt.Errorf("seedvault: %s: encode: %w", op, err)
	}
	defer cr.Zero(pt)

	env, err := v.prims.Seal(key, pt, v.aad())
	if err != nil {
		return fmt.Errorf("seedvault: %s: seal: %w", op, err)
	}
	if err := v.store.Put(ctx, v.alias, env); err != nil {
		return fmt.Errorf("seedvault: %s: write %s: %w", op, v.alias, err)
	}
	return nil
}

func (v *Vault) aad() []byte { return []byte("seedvault:" + v.alias) }
