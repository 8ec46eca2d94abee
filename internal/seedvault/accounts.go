package seedvault

import "context"

// AddAccount stores seed under name and makes name the current account. An
// existing entry for the same name is overwritten. The vault keeps its own
// copy of seed; the caller still owns and should wipe the argument.
func (v *Vault) AddAccount(ctx context.Context, name string, seed Seed) error {
	const op = "add"
	switch {
	case name == "":
		return opError(op, ErrEmptyName, nil)
	case len(seed) == 0:
		return opError(op, ErrEmptySeed, nil)
	}

	return v.add(ctx, op, name, seed, false)
}

// AddUniqueAccount is AddAccount that fails with ErrSeedExists when seed is
// already stored under any account. The check and the write happen in the
// same locked cycle, so two callers racing with one seed cannot both win.
func (v *Vault) AddUniqueAccount(ctx context.Context, name string, seed Seed) error {
	const op = "add"
	switch {
	case name == "":
		return opError(op, ErrEmptyName, nil)
	case len(seed) == 0:
		return opError(op, ErrEmptySeed, nil)
	}
	return v.add(ctx, op, name, seed, true)
}

func (v *Vault) add(ctx context.Context, op, name string, seed Seed, unique bool) error {
	id := v.hash(name)
	err := v.update(ctx, op, func(m AccountMap, _ bool) (AccountMap, error) {
		if unique && m.contains(seed) {
			return nil, opError(op, ErrSeedExists, nil)
		}
		if old, ok := m[id]; ok {
			old.Wipe()
		}
		m[id] = seed.clone()
		return m, nil
	})
	if err != nil {
		return err
	}

	v.setAccount(id)
	v.record(ctx, op, id)
	return nil
}

// RenameAccount moves the current account's seed to the id of newName and
// makes it the current account. Renaming to the same effective id rewrites
// the map unchanged.
func (v *Vault) RenameAccount(ctx context.Context, newName string) error {
	const op = "rename"
	if newName == "" {
		return opError(op, ErrEmptyName, nil)
	}

	newID := v.hash(newName)
	err := v.update(ctx, op, func(m AccountMap, existed bool) (AccountMap, error) {
		cur := v.CurrentAccount()
		if newID == cur {
			return m, nil
		}
		if !existed {
			return nil, opError(op, ErrNoVaultData, nil)
		}
		seed, ok := m[cur]
		if !ok {
			return nil, opError(op, ErrUnknownAccount, nil)
		}
		if _, taken := m[newID]; taken {
			return nil, opError(op, ErrAccountExists, nil)
		}
		m[newID] = seed
		delete(m, cur)
		return m, nil
	})
	if err != nil {
		return err
	}

	v.setAccount(newID)
	v.record(ctx, op, newID)
	return nil
}

// RemoveAccount deletes the current account's entry. Removing an account
// that is not in the map is a no-op write; removing from a vault that was
// never written fails with ErrStorageIntegrity.
func (v *Vault) RemoveAccount(ctx context.Context) error {
	const op = "remove"
	cur := v.CurrentAccount()
	err := v.update(ctx, op, func(m AccountMap, existed bool) (AccountMap, error) {
		if !existed {
			return nil, opError(op, ErrStorageIntegrity, ErrNoVaultData)
		}
		if seed, ok := m[cur]; ok {
			seed.Wipe()
			delete(m, cur)
		}
		return m, nil
	})
	if err != nil {
		return err
	}

	v.record(ctx, op, cur)
	return nil
}
