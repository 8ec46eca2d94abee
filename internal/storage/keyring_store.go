package storage

import (
	"context"
	"errors"
	"os"

	"github.com/99designs/keyring"
)

// KeyringStore puts blobs in the operating system's secret store (macOS
// Keychain, Secret Service, KWallet, Windows Credential Manager) or, where
// none is available, keyring's encrypted file backend.
type KeyringStore struct {
	ring    keyring.Keyring
	service string
}

type KeyringOptions struct {
	ServiceName string
	// Backends restricts the backends keyring may pick. Empty means any.
	Backends []keyring.BackendType
	// FileDir and FilePassword configure the encrypted file backend.
	FileDir      string
	FilePassword string
}

func NewKeyringStore(opts KeyringOptions) (*KeyringStore, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = "trinity-seedvault"
	}
	cfg := keyring.Config{
		ServiceName:     opts.ServiceName,
		AllowedBackends: opts.Backends,
		FileDir:         opts.FileDir,
	}
	if opts.FilePassword != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(opts.FilePassword)
	}
	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &KeyringStore{ring: ring, service: opts.ServiceName}, nil
}

func (k *KeyringStore) Put(_ context.Context, alias string, data []byte) error {
	if err := validateAlias(alias); err != nil {
		return err
	}
	return k.ring.Set(keyring.Item{
		Key:         alias,
		Data:        append([]byte(nil), data...),
		Label:       k.service + " " + alias,
		Description: "encrypted seed vault envelope",
	})
}

func (k *KeyringStore) Get(_ context.Context, alias string) ([]byte, error) {
	if err := validateAlias(alias); err != nil {
		return nil, err
	}
	item, err := k.ring.Get(alias)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.Data, nil
}

func (k *KeyringStore) Delete(_ context.Context, alias string) error {
	if err := validateAlias(alias); err != nil {
		return err
	}
	err := k.ring.Remove(alias)
	if errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
