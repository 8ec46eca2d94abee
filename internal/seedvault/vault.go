// Package seedvault stores wallet seeds, keyed by hashed account names, in a
// single sealed envelope behind a storage.BlobStore. Every mutation is a full
// read-decrypt-modify-encrypt-write cycle of that envelope, serialized per
// store and alias.
package seedvault

import (
	"context"
	"sync"

	"github.com/awnumar/memguard"
	log "github.com/sirupsen/logrus"

	"github.com/Techspire/trinity-wallet/internal/audit"
	cr "github.com/Techspire/trinity-wallet/internal/crypto"
	"github.com/Techspire/trinity-wallet/internal/storage"
)

type Vault struct {
	store  storage.BlobStore
	alias  string
	prims  cr.Primitives
	logger log.FieldLogger
	audit  *audit.Log

	mu      sync.RWMutex
	key     *memguard.Enclave
	account AccountID
}

type options struct {
	account string
	alias   string
	prims   cr.Primitives
	logger  log.FieldLogger
	audit   *audit.Log
}

type Option func(*options)

// WithAccount makes name the current account.
func WithAccount(name string) Option { return func(o *options) { o.account = name } }

func WithPrimitives(p cr.Primitives) Option { return func(o *options) { o.prims = p } }

// WithAlias overrides AliasSeeds.
func WithAlias(alias string) Option { return func(o *options) { o.alias = alias } }

func WithLogger(l log.FieldLogger) Option { return func(o *options) { o.logger = l } }

// WithAuditLog records every committed mutation in a.
func WithAuditLog(a *audit.Log) Option { return func(o *options) { o.audit = a } }

// Open binds a vault to store and key. The key must be cr.KeySize bytes.
// It is copied into a locked, encrypted enclave, so later changes to the
// caller's buffer do not affect the vault and the caller may wipe its copy
// right away.
//
// Mutations are serialized per storage location and alias within this
// process. Stores that do not implement storage.Locator (memory, badger,
// mongo, keyring) are serialized per store value, so share one value per
// location. Other processes are not coordinated with.
func Open(store storage.BlobStore, key []byte, opts ...Option) (*Vault, error) {
	switch {
	case len(key) == 0:
		return nil, opError("open", ErrEmptyKey, nil)
	case len(key) != cr.KeySize:
		return nil, opError("open", ErrInvalidKey, cr.ErrInvalidKeySize)
	}
	o := options{
		alias:  AliasSeeds,
		prims:  cr.DefaultPrimitives(),
		logger: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	v := &Vault{
		store:  store,
		alias:  o.alias,
		prims:  o.prims,
		logger: o.logger,
		audit:  o.audit,
	}
	if o.account != "" {
		v.account = v.hash(o.account)
	}
	v.key = memguard.NewEnclave(append([]byte(nil), key...))
	return v, nil
}

// CurrentAccount returns the account seed retrieval is scoped to.
func (v *Vault) CurrentAccount() AccountID {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.account
}

// SelectAccount makes name the current account without touching storage.
func (v *Vault) SelectAccount(name string) AccountID {
	id := v.hash(name)
	v.setAccount(id)
	return id
}

// AccountIDFor hashes name the way the vault keys its map.
func (v *Vault) AccountIDFor(name string) AccountID { return v.hash(name) }

// Close drops the vault key. Every later operation fails with ErrClosed.
func (v *Vault) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.key = nil
}

func (v *Vault) setAccount(id AccountID) {
	v.mu.Lock()
	v.account = id
	v.mu.Unlock()
}

func (v *Vault) hash(name string) AccountID {
	return AccountID(cr.AccountID(v.prims, name))
}

// withKey exposes the vault key to fn for the duration of the call only.
func (v *Vault) withKey(op string, fn func(key []byte) error) error {
	v.mu.RLock()
	enclave := v.key
	v.mu.RUnlock()
	if enclave == nil {
		return opError(op, ErrClosed, nil)
	}

	buf, err := enclave.Open()
	if err != nil {
		return opError(op, ErrClosed, err)
	}
	defer buf.Destroy()
	return fn(buf.Bytes())
}

// record runs after a mutation committed, so an audit write failure is
// logged rather than returned.
func (v *Vault) record(ctx context.Context, op string, id AccountID) {
	logger := v.logger.WithFields(log.Fields{"op": op, "account": id.Short(), "alias": v.alias})
	logger.Debug("vault updated")
	if v.audit == nil {
		return
	}
	if _, err := v.audit.Append(ctx, op, string(id)); err != nil {
		logger.WithError(err).Error("audit append failed")
	}
}
