// Package store holds the process-wide keyed storage the bot keeps its
// state in. Values are opaque bytes; callers own the encoding.
package store

import (
	"context"
	"fmt"
	"sync"
)

// Store is a minimal get/set key value store. A missing key is reported
// through the bool, never as an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

// Namespaced prefixes every key with "<prefix>:".
func Namespaced(s Store, prefix string) Store {
	return &namespaced{Store: s, prefix: prefix}
}

type namespaced struct {
	Store
	prefix string
}

func (n *namespaced) key(k string) string {
	return fmt.Sprintf("%s:%s", n.prefix, k)
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.Store.Get(ctx, n.key(key))
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.Store.Set(ctx, n.key(key), value)
}

// MemoryStore keeps everything in a map. Used in tests and for throwaway
// runs where nothing should touch the disk.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, found := m.data[key]
	if !found {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
