// Package memstore provides an in-memory store.KV. Data is lost on restart;
// it is the default backend for tests.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/finbook/finbook/store"
)

// Store is an in-memory key/document store, safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// New creates an empty store.
func New() *Store {
	return &Store{docs: make(map[string][]byte)}
}

func (s *Store) Get(ctx context.Context, key string, v any) error {
	s.mu.RLock()
	raw, ok := s.docs[key]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", key, store.ErrNotFound)
	}
	return json.Unmarshal(raw, v)
}

func (s *Store) Put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	s.mu.Lock()
	s.docs[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *Store) Mutate(ctx context.Context, key string, fn func(raw []byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.docs[key] // nil when absent
	raw, err := fn(old)
	if err != nil {
		return err
	}
	if raw == nil {
		delete(s.docs, key)
		return nil
	}
	s.docs[key] = raw
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.docs, key)
	s.mu.Unlock()
	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.docs))
	for k := range s.docs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

var _ store.KV = (*Store)(nil)
