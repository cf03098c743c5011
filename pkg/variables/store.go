package variables

import (
	"sort"
	"strings"
	"sync"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Lookup is the read side of a variable store.
type Lookup interface {
	Get(name string) (string, bool)
}

type entry struct {
	name  string
	value string
}

// Store maps variable names to values. Names compare case-insensitively;
// the spelling of the last Set wins for display.
type Store struct {
	mu     sync.RWMutex
	values map[string]entry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]entry)}
}

// FromMap returns a store seeded from m.
func FromMap(m map[string]string) *Store {
	s := NewStore()
	for k, v := range m {
		s.Set(k, v)
	}
	return s
}

// FromEnvironment returns a store seeded with the process environment.
func FromEnvironment() (*Store, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, err
	}

	s := NewStore()
	for _, key := range k.Keys() {
		s.Set(key, k.String(key))
	}
	return s, nil
}

func (s *Store) Set(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[strings.ToLower(name)] = entry{name: name, value: value}
}

// SetDefault sets name only when it is not already present. It reports
// whether the value was stored.
func (s *Store) SetDefault(name, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(name)
	if _, ok := s.values[key]; ok {
		return false
	}
	s.values[key] = entry{name: name, value: value}
	return true
}

func (s *Store) Get(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.values[strings.ToLower(name)]
	return e.value, ok
}

func (s *Store) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

func (s *Store) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, strings.ToLower(name))
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Keys returns the stored names sorted case-insensitively.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for _, e := range s.values {
		keys = append(keys, e.name)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})
	return keys
}

// Snapshot returns a copy of the store contents keyed by display name.
func (s *Store) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.values))
	for _, e := range s.values {
		out[e.name] = e.value
	}
	return out
}
