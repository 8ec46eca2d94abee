package seedvault

import (
	"sync"

	"github.com/Techspire/trinity-wallet/internal/storage"
)

// Every vault instance in the process that shares a storage location and
// alias is a view of the same blob. Mutations serialize on one mutex per
// pair so two read-modify-write cycles never interleave. Stores that
// implement storage.Locator are keyed by location, so two handles on one
// directory share a mutex; other stores are keyed by identity and must be
// comparable (pointer types); all storage backends are.
type lockKey struct {
	store    storage.BlobStore
	location string
	alias    string
}

var aliasLocks = struct {
	sync.Mutex
	m map[lockKey]*sync.Mutex
}{m: make(map[lockKey]*sync.Mutex)}

func keyFor(store storage.BlobStore, alias string) lockKey {
	if l, ok := store.(storage.Locator); ok {
		return lockKey{location: l.Location(), alias: alias}
	}
	return lockKey{store: store, alias: alias}
}

func lockFor(store storage.BlobStore, alias string) *sync.Mutex {
	aliasLocks.Lock()
	defer aliasLocks.Unlock()

	k := keyFor(store, alias)
	mu, ok := aliasLocks.m[k]
	if !ok {
		mu = &sync.Mutex{}
		aliasLocks.m[k] = mu
	}
	return mu
}
