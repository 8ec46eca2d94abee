package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

type FileBlobStore struct{ dir string }

func NewFileBlobStore(dir string) (*FileBlobStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &FileBlobStore{dir: filepath.Clean(dir)}, nil
}

// Location returns the cleaned absolute directory holding the blobs.
func (f *FileBlobStore) Location() string { return "file:" + f.dir }

func (f *FileBlobStore) path(alias string) string {
	return filepath.Join(f.dir, alias+".blob")
}

func (f *FileBlobStore) Put(_ context.Context, alias string, data []byte) error {
	if err := validateAlias(alias); err != nil {
		return err
	}
	return atomicWriteFile(f.path(alias), data, 0o600)
}

func (f *FileBlobStore) Get(_ context.Context, alias string) ([]byte, error) {
	if err := validateAlias(alias); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.path(alias))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, err
}

func (f *FileBlobStore) Delete(_ context.Context, alias string) error {
	if err := validateAlias(alias); err != nil {
		return err
	}
	err := os.Remove(f.path(alias))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// atomicWriteFile writes to a temp file in the target directory, syncs it
// and renames it over path, so a crash leaves either the old or the new blob.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".blob-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
