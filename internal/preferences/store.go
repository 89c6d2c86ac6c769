// Package preferences remembers the model each caller key last selected.
package preferences

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/JakeFAU/horde-relay/internal/metrics"
)

// Store maps caller keys to model names. Last write wins. The store is
// bounded by an LRU capacity and an optional TTL; a zero capacity or TTL
// disables the corresponding bound.
type Store struct {
	defaultModel string
	entries      *expirable.LRU[string, string]
}

// Config bounds the store.
type Config struct {
	DefaultModel string
	Capacity     int
	TTL          time.Duration
}

// New constructs a Store.
func New(cfg Config) *Store {
	s := &Store{
		defaultModel: cfg.DefaultModel,
		entries:      expirable.NewLRU[string, string](cfg.Capacity, nil, cfg.TTL),
	}
	metrics.TrackPreferenceEntries(s.Len)
	return s
}

// Get returns the caller's preferred model, or the default when unset.
func (s *Store) Get(key string) string {
	if model, ok := s.entries.Get(key); ok {
		return model
	}
	return s.defaultModel
}

// Set stores model for key and returns the stored value.
func (s *Store) Set(key, model string) string {
	s.entries.Add(key, model)
	return model
}

// Reset drops the caller's preference so Get falls back to the default.
func (s *Store) Reset(key string) {
	s.entries.Remove(key)
}

// Len reports the number of live entries.
func (s *Store) Len() int {
	return s.entries.Len()
}
