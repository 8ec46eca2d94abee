package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/99designs/keyring"
	log "github.com/sirupsen/logrus"
)

const (
	BackendFile    = "file"
	BackendMemory  = "memory"
	BackendBadger  = "badger"
	BackendSQLite  = "sqlite"
	BackendMongo   = "mongo"
	BackendKeyring = "keyring"
)

type Options struct {
	Backend string
	// Path is a directory for file, badger and keyring's file backend and
	// a database file for sqlite.
	Path string

	MongoURI        string
	MongoDB         string
	MongoCollection string

	KeyringService  string
	KeyringPassword string
}

// Open builds the BlobStore named by opts.Backend.
func Open(ctx context.Context, opts Options) (BlobStore, error) {
	logger := log.WithField("backend", opts.Backend)

	var (
		store BlobStore
		err   error
	)
	switch opts.Backend {
	case BackendFile, "":
		store, err = NewFileBlobStore(opts.Path)
	case BackendMemory:
		store = NewMemoryStore()
	case BackendBadger:
		store, err = NewBadgerStore(opts.Path, badgerLogger{logger})
	case BackendSQLite:
		path := opts.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "seedvault.db")
		}
		store, err = NewSQLiteStore(ctx, path)
	case BackendMongo:
		store, err = NewMongoBlobStore(ctx, opts.MongoURI, opts.MongoDB, opts.MongoCollection)
	case BackendKeyring:
		kopts := KeyringOptions{
			ServiceName:  opts.KeyringService,
			FileDir:      opts.Path,
			FilePassword: opts.KeyringPassword,
		}
		if opts.KeyringPassword != "" {
			kopts.Backends = []keyring.BackendType{keyring.FileBackend}
		}
		store, err = NewKeyringStore(kopts)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open %s backend: %w", opts.Backend, err)
	}

	logger.Debug("blob store opened")
	return store, nil
}

// badgerLogger routes badger's chatter through logrus at debug level so that
// the vault's own logs are not drowned out.
type badgerLogger struct{ *log.Entry }

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.Entry.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.Entry.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.Entry.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.Entry.Debugf(f, v...) }
