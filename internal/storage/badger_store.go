package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const badgerKeyPrefix = "blob/"

// BadgerStore keeps blobs in an embedded badger database. An empty dir opens
// an in-memory database.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(dir string, logger badger.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(logger)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerKey(alias string) []byte { return []byte(badgerKeyPrefix + alias) }

func (b *BadgerStore) Put(_ context.Context, alias string, data []byte) error {
	if err := validateAlias(alias); err != nil {
		return err
	}
	val := append([]byte(nil), data...)
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(alias), val)
	})
}

func (b *BadgerStore) Get(_ context.Context, alias string) ([]byte, error) {
	if err := validateAlias(alias); err != nil {
		return nil, err
	}
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(alias))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return out, err
}

func (b *BadgerStore) Delete(_ context.Context, alias string) error {
	if err := validateAlias(alias); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(alias))
	})
}

func (b *BadgerStore) Close(context.Context) error {
	return b.db.Close()
}
