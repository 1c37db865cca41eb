package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

const tmpDir = ".tmp"

// DiskvBackend stores each blob as a file under a base directory.
type DiskvBackend struct {
	d        *diskv.Diskv
	basePath string
}

// NewDiskvBackend opens (creating if needed) a diskv store at basePath.
func NewDiskvBackend(basePath string) (*DiskvBackend, error) {
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if err := os.MkdirAll(filepath.Join(basePath, tmpDir), 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &DiskvBackend{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			Transform:    func(string) []string { return []string{} },
			TempDir:      filepath.Join(basePath, tmpDir),
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
		basePath: basePath,
	}, nil
}

func (b *DiskvBackend) Read(key string) ([]byte, error) {
	val, err := b.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

func (b *DiskvBackend) Write(key string, val []byte) error {
	return b.d.Write(key, val)
}

func (b *DiskvBackend) Erase(key string) error {
	if err := b.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// BasePath is the directory holding the blobs.
func (b *DiskvBackend) BasePath() string {
	return b.basePath
}
