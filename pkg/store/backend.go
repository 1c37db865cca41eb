package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNotFound is returned by a Backend when no blob is stored under a key.
var ErrNotFound = errors.New("store: key not found")

// Keys of the three independently persisted blobs.
const (
	KeyDreams   = "somnium_dreams_v1"
	KeySections = "somnium_sections_v1"
	KeyPremium  = "somnium_premium_v1"
)

// Backend is the durable key-value port the Store is built on.
type Backend interface {
	Read(key string) ([]byte, error)
	Write(key string, val []byte) error
	Erase(key string) error
}

// Config selects and locates a Backend.
type Config interface {
	BasePath() string
	BackendKind() string
}

// Backend kinds understood by OpenBackend.
const (
	BackendDiskv  = "diskv"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// OpenBackend builds the backend named by cfg.
func OpenBackend(cfg Config) (Backend, error) {
	switch kind := strings.ToLower(strings.TrimSpace(cfg.BackendKind())); kind {
	case "", BackendDiskv:
		return NewDiskvBackend(cfg.BasePath())
	case BackendSQLite:
		return OpenSQLiteBackend(cfg.BasePath())
	case BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", kind)
	}
}

// MemoryBackend keeps blobs in process memory. It backs tests and the
// "memory" backend kind.
type MemoryBackend struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[string][]byte)}
}

func (m *MemoryBackend) Read(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.blobs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBackend) Write(key string, val []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), val...)
	return nil
}

func (m *MemoryBackend) Erase(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}
