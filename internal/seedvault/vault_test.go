package seedvault

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Techspire/trinity-wallet/internal/audit"
	cr "github.com/Techspire/trinity-wallet/internal/crypto"
	"github.com/Techspire/trinity-wallet/internal/storage"
)

func randomBytes(tb testing.TB, n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		tb.Fatalf("rand.Read: %v", err)
	}
	return b
}

func newKey(tb testing.TB) []byte { return randomBytes(tb, cr.KeySize) }

func newSeed(tb testing.TB) Seed { return Seed(randomBytes(tb, 64)) }

func openVault(t *testing.T, store storage.BlobStore, key []byte, opts ...Option) *Vault {
	t.Helper()
	v, err := Open(store, key, opts...)
	require.NoError(t, err)
	t.Cleanup(v.Close)
	return v
}

func TestOpenRejectsEmptyKey(t *testing.T) {
	_, err := Open(storage.NewMemoryStore(), nil)
	require.ErrorIs(t, err, ErrEmptyKey)
}

func TestOpenRejectsWrongKeyLength(t *testing.T) {
	for _, n := range []int{16, cr.KeySize - 1, cr.KeySize + 1, 64} {
		_, err := Open(storage.NewMemoryStore(), make([]byte, n))
		require.ErrorIs(t, err, ErrInvalidKey, "%d byte key", n)
		require.NotErrorIs(t, err, ErrCorruptEnvelope)
	}
}

func TestOpenCopiesKey(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	key := newKey(t)
	keyCopy := append([]byte(nil), key...)
	seed := newSeed(t)

	v := openVault(t, store, key)
	cr.Zero(key)
	require.NoError(t, v.AddAccount(ctx, "main", seed))

	other := openVault(t, store, keyCopy, WithAccount("main"))
	got, err := other.Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, seed, got)
}

func TestOpenWithAccountHashesName(t *testing.T) {
	v := openVault(t, storage.NewMemoryStore(), newKey(t), WithAccount("savings"))
	require.Equal(t, AccountID(cr.HashAccountName("savings")), v.CurrentAccount())
	require.Equal(t, v.CurrentAccount(), v.AccountIDFor("savings"))

	empty := openVault(t, storage.NewMemoryStore(), newKey(t))
	require.Equal(t, AccountID(""), empty.CurrentAccount())
}

func TestAddAccountRoundTrip(t *testing.T) {
	ctx := context.Background()
	v := openVault(t, storage.NewMemoryStore(), newKey(t))
	seed := newSeed(t)

	require.NoError(t, v.AddAccount(ctx, "main", seed))
	require.Equal(t, v.AccountIDFor("main"), v.CurrentAccount())

	got, err := v.Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, seed, got)
}

func TestAddAccountKeepsOwnCopy(t *testing.T) {
	ctx := context.Background()
	v := openVault(t, storage.NewMemoryStore(), newKey(t))
	seed := newSeed(t)
	want := seed.clone()

	require.NoError(t, v.AddAccount(ctx, "main", seed))
	seed.Wipe()

	got, err := v.Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestAddAccountValidates(t *testing.T) {
	ctx := context.Background()
	v := openVault(t, storage.NewMemoryStore(), newKey(t))
	require.ErrorIs(t, v.AddAccount(ctx, "", newSeed(t)), ErrEmptyName)
	require.ErrorIs(t, v.AddAccount(ctx, "main", nil), ErrEmptySeed)
}

func TestAddAccountOverwritesDuplicate(t *testing.T) {
	ctx := context.Background()
	v := openVault(t, storage.NewMemoryStore(), newKey(t))
	s1, s2 := newSeed(t), newSeed(t)

	require.NoError(t, v.AddAccount(ctx, "main", s1))
	require.NoError(t, v.AddAccount(ctx, "main", s2))

	got, err := v.Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, s2, got)

	ids, err := v.Accounts(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
}

func TestAddAccountMergesExisting(t *testing.T) {
	ctx := context.Background()
	v := openVault(t, storage.NewMemoryStore(), newKey(t))
	s1, s2 := newSeed(t), newSeed(t)

	require.NoError(t, v.AddAccount(ctx, "one", s1))
	require.NoError(t, v.AddAccount(ctx, "two", s2))

	m, err := v.LoadSeeds(ctx)
	require.NoError(t, err)
	defer m.Wipe()
	require.Equal(t, AccountMap{
		v.AccountIDFor("one"): s1,
		v.AccountIDFor("two"): s2,
	}, m)
}

func TestRenamePreservesSeed(t *testing.T) {
	ctx := context.Background()
	a := audit.New()
	v := openVault(t, storage.NewMemoryStore(), newKey(t), WithAuditLog(a))
	seed := newSeed(t)

	require.NoError(t, v.AddAccount(ctx, "old", seed))
	require.NoError(t, v.RenameAccount(ctx, "new"))
	require.Equal(t, v.AccountIDFor("new"), v.CurrentAccount())

	m, err := v.LoadSeeds(ctx)
	require.NoError(t, err)
	defer m.Wipe()
	require.NotContains(t, m, v.AccountIDFor("old"))

	got, err := v.Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, seed, got)

	entries := a.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "rename", entries[1].Op)
	require.Equal(t, string(v.AccountIDFor("new")), entries[1].Account)
	require.NoError(t, a.Verify())
}

func TestRenameToSameName(t *testing.T) {
	ctx := context.Background()
	v := openVault(t, storage.NewMemoryStore(), newKey(t))
	s1, s2 := newSeed(t), newSeed(t)

	require.NoError(t, v.AddAccount(ctx, "two", s2))
	require.NoError(t, v.AddAccount(ctx, "one", s1))
	require.NoError(t, v.RenameAccount(ctx, "one"))

	m, err := v.LoadSeeds(ctx)
	require.NoError(t, err)
	defer m.Wipe()
	require.Len(t, m, 2)
	require.Equal(t, s1, m[v.AccountIDFor("one")])
	require.Equal(t, s2, m[v.AccountIDFor("two")])
}

func TestRenameSameNameOnEmptyVaultWritesEmptyMap(t *testing.T) {
	ctx := context.Background()
	v := openVault(t, storage.NewMemoryStore(), newKey(t), WithAccount("main"))

	require.NoError(t, v.RenameAccount(ctx, "main"))

	m, err := v.LoadSeeds(ctx)
	require.NoError(t, err)
	require.Empty(t, m)
}

func TestRenameFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("no vault data", func(t *testing.T) {
		v := openVault(t, storage.NewMemoryStore(), newKey(t), WithAccount("main"))
		err := v.RenameAccount(ctx, "other")
		require.ErrorIs(t, err, ErrNoVaultData)
		require.Equal(t, v.AccountIDFor("main"), v.CurrentAccount())
	})

	t.Run("unknown current account", func(t *testing.T) {
		store := storage.NewMemoryStore()
		key := newKey(t)
		v := openVault(t, store, key)
		require.NoError(t, v.AddAccount(ctx, "main", newSeed(t)))

		ghost := openVault(t, store, key, WithAccount("ghost"))
		require.ErrorIs(t, ghost.RenameAccount(ctx, "other"), ErrUnknownAccount)
	})

	t.Run("target exists", func(t *testing.T) {
		store := storage.NewMemoryStore()
		key := newKey(t)
		v := openVault(t, store, key)
		s1, s2 := newSeed(t), newSeed(t)
		require.NoError(t, v.AddAccount(ctx, "one", s1))
		require.NoError(t, v.AddAccount(ctx, "two", s2))
		require.ErrorIs(t, v.RenameAccount(ctx, "one"), ErrAccountExists)
		require.Equal(t, v.AccountIDFor("two"), v.CurrentAccount())

		// neither seed is overwritten or dropped
		m, err := v.LoadSeeds(ctx)
		require.NoError(t, err)
		defer m.Wipe()
		require.Equal(t, AccountMap{
			v.AccountIDFor("one"): s1,
			v.AccountIDFor("two"): s2,
		}, m)

		got, err := v.Seed(ctx)
		require.NoError(t, err)
		require.Equal(t, s2, got)
		got, err = openVault(t, store, key, WithAccount("one")).Seed(ctx)
		require.NoError(t, err)
		require.Equal(t, s1, got)
	})
}

func TestRemoveIsAccountScoped(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	key := newKey(t)
	v := openVault(t, store, key)
	s1, s2 := newSeed(t), newSeed(t)

	require.NoError(t, v.AddAccount(ctx, "two", s2))
	require.NoError(t, v.AddAccount(ctx, "one", s1))
	require.NoError(t, v.RemoveAccount(ctx))

	m, err := v.LoadSeeds(ctx)
	require.NoError(t, err)
	defer m.Wipe()
	require.NotContains(t, m, v.AccountIDFor("one"))

	two := openVault(t, store, key, WithAccount("two"))
	got, err := two.Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, s2, got)

	_, err = v.Seed(ctx)
	require.ErrorIs(t, err, ErrUnknownAccount)
}

func TestRemoveMissingAccountIsNoop(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	key := newKey(t)
	v := openVault(t, store, key)
	require.NoError(t, v.AddAccount(ctx, "main", newSeed(t)))

	ghost := openVault(t, store, key, WithAccount("ghost"))
	require.NoError(t, ghost.RemoveAccount(ctx))

	ids, err := v.Accounts(ctx)
	require.NoError(t, err)
	require.Equal(t, []AccountID{v.AccountIDFor("main")}, ids)
}

func TestRemoveOnEmptyVaultFails(t *testing.T) {
	ctx := context.Background()
	v := openVault(t, storage.NewMemoryStore(), newKey(t), WithAccount("main"))

	err := v.RemoveAccount(ctx)
	require.ErrorIs(t, err, ErrStorageIntegrity)

	var ve *VaultError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "remove", ve.Op)
}

func TestSeedDistinguishesEmptyFromUnknown(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	key := newKey(t)
	v := openVault(t, store, key, WithAccount("main"))

	_, err := v.Seed(ctx)
	require.ErrorIs(t, err, ErrNoVaultData)
	require.NotErrorIs(t, err, ErrUnknownAccount)

	other := openVault(t, store, key)
	require.NoError(t, other.AddAccount(ctx, "other", newSeed(t)))

	_, err = v.Seed(ctx)
	require.ErrorIs(t, err, ErrUnknownAccount)
	require.NotErrorIs(t, err, ErrNoVaultData)
}

func TestSeedReturnsCopy(t *testing.T) {
	ctx := context.Background()
	v := openVault(t, storage.NewMemoryStore(), newKey(t))
	seed := newSeed(t)
	require.NoError(t, v.AddAccount(ctx, "main", seed))

	got, err := v.Seed(ctx)
	require.NoError(t, err)
	got.Wipe()

	again, err := v.Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, seed, again)
}

func TestWithSeedWipesAfterUse(t *testing.T) {
	ctx := context.Background()
	v := openVault(t, storage.NewMemoryStore(), newKey(t))
	seed := newSeed(t)
	require.NoError(t, v.AddAccount(ctx, "main", seed))

	var leaked Seed
	err := v.WithSeed(ctx, func(s Seed) error {
		require.Equal(t, seed, s)
		leaked = s
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, make(Seed, len(seed)), leaked)

	boom := errors.New("boom")
	require.ErrorIs(t, v.WithSeed(ctx, func(Seed) error { return boom }), boom)
}

func TestIsUniqueSeed(t *testing.T) {
	ctx := context.Background()
	v := openVault(t, storage.NewMemoryStore(), newKey(t))
	seed := newSeed(t)

	unique, err := v.IsUniqueSeed(ctx, seed)
	require.NoError(t, err)
	require.True(t, unique, "empty vault holds no seeds")

	require.NoError(t, v.AddAccount(ctx, "main", seed))
	require.NoError(t, v.AddAccount(ctx, "other", newSeed(t)))

	unique, err = v.IsUniqueSeed(ctx, seed.clone())
	require.NoError(t, err)
	require.False(t, unique)

	unique, err = v.IsUniqueSeed(ctx, newSeed(t))
	require.NoError(t, err)
	require.True(t, unique)

	unique, err = v.IsUniqueSeed(ctx, seed[:32])
	require.NoError(t, err)
	require.True(t, unique, "a prefix of a stored seed is a different seed")
}

func TestWrongKeyIsOpaque(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	good := openVault(t, store, newKey(t))
	seed := newSeed(t)
	require.NoError(t, good.AddAccount(ctx, "main", seed))

	bad := openVault(t, store, newKey(t), WithAccount("main"))
	require.Nil(t, bad.Seeds(ctx))
	require.False(t, bad.HasData(ctx))

	_, err := bad.LoadSeeds(ctx)
	require.ErrorIs(t, err, ErrVaultKeyMismatch)

	s, err := bad.Seed(ctx)
	require.ErrorIs(t, err, ErrVaultKeyMismatch)
	require.Nil(t, s)

	_, err = bad.IsUniqueSeed(ctx, seed)
	require.ErrorIs(t, err, ErrVaultKeyMismatch)

	// A wrong key must never replace the stored envelope.
	require.ErrorIs(t, bad.AddAccount(ctx, "intruder", newSeed(t)), ErrVaultKeyMismatch)
	require.ErrorIs(t, bad.RemoveAccount(ctx), ErrVaultKeyMismatch)
	got, err := good.Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, seed, got)
}

func TestCorruptEnvelope(t *testing.T) {
	ctx := context.Background()
	key := newKey(t)

	t.Run("undecodable plaintext", func(t *testing.T) {
		store := storage.NewMemoryStore()
		env, err := cr.DefaultPrimitives().Seal(key, []byte("not json"), []byte("seedvault:"+AliasSeeds))
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, AliasSeeds, env))

		v := openVault(t, store, key)
		_, err = v.LoadSeeds(ctx)
		require.ErrorIs(t, err, ErrCorruptEnvelope)
		require.Nil(t, v.Seeds(ctx))
	})

	t.Run("unknown envelope version", func(t *testing.T) {
		store := storage.NewMemoryStore()
		require.NoError(t, store.Put(ctx, AliasSeeds, []byte{0x7f, 1, 2, 3}))

		v := openVault(t, store, key)
		_, err := v.LoadSeeds(ctx)
		require.ErrorIs(t, err, ErrCorruptEnvelope)
	})
}

func TestSeedsEmptyVault(t *testing.T) {
	v := openVault(t, storage.NewMemoryStore(), newKey(t))
	require.Nil(t, v.Seeds(context.Background()))
}

func TestAliasIsolation(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	key := newKey(t)

	a := openVault(t, store, key)
	b := openVault(t, store, key, WithAlias("seeds-testnet"))
	require.NoError(t, a.AddAccount(ctx, "main", newSeed(t)))

	_, err := b.LoadSeeds(ctx)
	require.ErrorIs(t, err, ErrNoVaultData)
}

func TestClosedVault(t *testing.T) {
	ctx := context.Background()
	v, err := Open(storage.NewMemoryStore(), newKey(t))
	require.NoError(t, err)
	v.Close()

	require.ErrorIs(t, v.AddAccount(ctx, "main", newSeed(t)), ErrClosed)
	_, err = v.Seed(ctx)
	require.ErrorIs(t, err, ErrClosed)
}

// failingStore fails every Put after the first n.
type failingStore struct {
	*storage.MemoryStore
	puts, allow int
}

func (f *failingStore) Put(ctx context.Context, alias string, data []byte) error {
	f.puts++
	if f.puts > f.allow {
		return errors.New("disk full")
	}
	return f.MemoryStore.Put(ctx, alias, data)
}

func TestFailedWriteLeavesPriorEnvelope(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: storage.NewMemoryStore(), allow: 1}
	v := openVault(t, store, newKey(t))
	seed := newSeed(t)
	require.NoError(t, v.AddAccount(ctx, "main", seed))

	before, err := store.Get(ctx, AliasSeeds)
	require.NoError(t, err)

	require.Error(t, v.AddAccount(ctx, "other", newSeed(t)))
	require.Equal(t, v.AccountIDFor("main"), v.CurrentAccount(), "failed add must not switch account")
	require.Error(t, v.RenameAccount(ctx, "renamed"))
	require.Equal(t, v.AccountIDFor("main"), v.CurrentAccount())

	after, err := store.Get(ctx, AliasSeeds)
	require.NoError(t, err)
	require.Equal(t, before, after)

	got, err := v.Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, seed, got)
}

func TestConcurrentAddsAreAllRetained(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	key := newKey(t)

	const n = 16
	seeds := make([]Seed, n)
	for i := range seeds {
		seeds[i] = newSeed(t)
	}

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			// Separate instances share nothing but the store and alias.
			v, err := Open(store, key)
			if err != nil {
				return err
			}
			defer v.Close()
			return v.AddAccount(ctx, fmt.Sprintf("account-%d", i), seeds[i])
		})
	}
	require.NoError(t, g.Wait())

	for i := 0; i < n; i++ {
		v := openVault(t, store, key, WithAccount(fmt.Sprintf("account-%d", i)))
		got, err := v.Seed(ctx)
		require.NoError(t, err)
		require.Equal(t, seeds[i], got)
	}
}

func TestAddUniqueAccount(t *testing.T) {
	ctx := context.Background()
	a := audit.New()
	v := openVault(t, storage.NewMemoryStore(), newKey(t), WithAuditLog(a))
	seed := newSeed(t)

	require.NoError(t, v.AddUniqueAccount(ctx, "main", seed))
	require.NoError(t, v.AddUniqueAccount(ctx, "other", newSeed(t)))

	err := v.AddUniqueAccount(ctx, "copy", seed.clone())
	require.ErrorIs(t, err, ErrSeedExists)
	require.Equal(t, v.AccountIDFor("other"), v.CurrentAccount(), "failed add keeps the current account")

	m, err := v.LoadSeeds(ctx)
	require.NoError(t, err)
	defer m.Wipe()
	require.Len(t, m, 2)
	require.NotContains(t, m, v.AccountIDFor("copy"))
	require.Len(t, a.Entries(), 2)

	require.ErrorIs(t, v.AddUniqueAccount(ctx, "", newSeed(t)), ErrEmptyName)
	require.ErrorIs(t, v.AddUniqueAccount(ctx, "empty", Seed{}), ErrEmptySeed)
}

func TestConcurrentAddUniqueAdmitsOneCopy(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	key := newKey(t)
	seed := newSeed(t)

	const n = 8
	errs := make([]error, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			v, err := Open(store, key)
			if err != nil {
				return err
			}
			defer v.Close()
			errs[i] = v.AddUniqueAccount(ctx, fmt.Sprintf("account-%d", i), seed.clone())
			return nil
		})
	}
	require.NoError(t, g.Wait())

	added := 0
	for _, err := range errs {
		if err == nil {
			added++
			continue
		}
		require.ErrorIs(t, err, ErrSeedExists)
	}
	require.Equal(t, 1, added)

	m, err := openVault(t, store, key).LoadSeeds(ctx)
	require.NoError(t, err)
	defer m.Wipe()
	require.Len(t, m, 1)
}

func TestLocksFollowStorageLocation(t *testing.T) {
	dir := t.TempDir()
	a, err := storage.NewFileBlobStore(dir)
	require.NoError(t, err)
	b, err := storage.NewFileBlobStore(dir + "/.")
	require.NoError(t, err)
	other, err := storage.NewFileBlobStore(t.TempDir())
	require.NoError(t, err)

	require.Same(t, lockFor(a, "seeds"), lockFor(b, "seeds"))
	require.NotSame(t, lockFor(a, "seeds"), lockFor(a, "other"))
	require.NotSame(t, lockFor(a, "seeds"), lockFor(other, "seeds"))

	m1, m2 := storage.NewMemoryStore(), storage.NewMemoryStore()
	require.Same(t, lockFor(m1, "seeds"), lockFor(m1, "seeds"))
	require.NotSame(t, lockFor(m1, "seeds"), lockFor(m2, "seeds"))
}

func TestConcurrentAddsAcrossStoreHandles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	key := newKey(t)

	const n = 8
	seeds := make([]Seed, n)
	for i := range seeds {
		seeds[i] = newSeed(t)
	}

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			// each writer opens its own handle on the same directory
			store, err := storage.NewFileBlobStore(dir)
			if err != nil {
				return err
			}
			v, err := Open(store, key)
			if err != nil {
				return err
			}
			defer v.Close()
			return v.AddAccount(ctx, fmt.Sprintf("account-%d", i), seeds[i])
		})
	}
	require.NoError(t, g.Wait())

	store, err := storage.NewFileBlobStore(dir)
	require.NoError(t, err)
	m, err := openVault(t, store, key).LoadSeeds(ctx)
	require.NoError(t, err)
	defer m.Wipe()
	require.Len(t, m, n)
}

func TestConcurrentAddAndRemove(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	key := newKey(t)

	base := openVault(t, store, key)
	require.NoError(t, base.AddAccount(ctx, "doomed", newSeed(t)))
	keep := newSeed(t)

	var g errgroup.Group
	g.Go(func() error {
		v, err := Open(store, key, WithAccount("doomed"))
		if err != nil {
			return err
		}
		defer v.Close()
		return v.RemoveAccount(ctx)
	})
	g.Go(func() error {
		v, err := Open(store, key)
		if err != nil {
			return err
		}
		defer v.Close()
		return v.AddAccount(ctx, "keeper", keep)
	})
	require.NoError(t, g.Wait())

	ids, err := base.Accounts(ctx)
	require.NoError(t, err)
	require.Equal(t, []AccountID{base.AccountIDFor("keeper")}, ids)
}

// countingPrimitives wraps the defaults and counts seals.
type countingPrimitives struct {
	cr.Primitives
	seals int
}

func (c *countingPrimitives) Seal(key, pt, aad []byte) ([]byte, error) {
	c.seals++
	return c.Primitives.Seal(key, pt, aad)
}

func TestCustomPrimitives(t *testing.T) {
	ctx := context.Background()
	p := &countingPrimitives{Primitives: cr.DefaultPrimitives()}
	v := openVault(t, storage.NewMemoryStore(), newKey(t), WithPrimitives(p))

	require.NoError(t, v.AddAccount(ctx, "main", newSeed(t)))
	require.NoError(t, v.RenameAccount(ctx, "renamed"))
	require.NoError(t, v.RemoveAccount(ctx))
	require.Equal(t, 3, p.seals, "each mutation seals exactly one envelope")
}

func TestSelectAccount(t *testing.T) {
	ctx := context.Background()
	v := openVault(t, storage.NewMemoryStore(), newKey(t))
	s1, s2 := newSeed(t), newSeed(t)
	require.NoError(t, v.AddAccount(ctx, "one", s1))
	require.NoError(t, v.AddAccount(ctx, "two", s2))

	require.Equal(t, v.AccountIDFor("one"), v.SelectAccount("one"))
	got, err := v.Seed(ctx)
	require.NoError(t, err)
	require.Equal(t, s1, got)

	v.SelectAccount("missing")
	_, err = v.Seed(ctx)
	require.ErrorIs(t, err, ErrUnknownAccount)
}
