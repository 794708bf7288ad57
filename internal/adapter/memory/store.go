// Package memory implements the contextstore port with an in-process map.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/epicflowhq/epicflow/internal/domain"
	"github.com/epicflowhq/epicflow/internal/domain/epic"
)

// DefaultMaxEntries bounds retention when no limit is configured.
const DefaultMaxEntries = 10000

// Store keeps the most recent context entry per issue number.
// Last write wins; retention is bounded by maxEntries, evicting the entry
// with the oldest UpdatedAt once the bound is exceeded.
type Store struct {
	mu         sync.RWMutex
	entries    map[int]epic.ContextEntry
	maxEntries int
	now        func() time.Time // for testing
}

// New creates a context store. maxEntries <= 0 selects DefaultMaxEntries.
func New(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		entries:    make(map[int]epic.ContextEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Store saves the entry, overwriting any previous entry for the same issue.
func (s *Store) Store(_ context.Context, entry epic.ContextEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.UpdatedAt = s.now()

	if _, exists := s.entries[entry.IssueNumber]; !exists && len(s.entries) >= s.maxEntries {
		s.evictOldest()
	}
	s.entries[entry.IssueNumber] = entry
	return nil
}

// Get returns the entry for the issue, or domain.ErrNotFound when absent.
func (s *Store) Get(_ context.Context, issueNumber int) (epic.ContextEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[issueNumber]
	if !ok {
		return epic.ContextEntry{}, domain.ErrNotFound
	}
	return entry, nil
}

// Delete removes the entry for the issue. Deleting an absent entry is a no-op.
func (s *Store) Delete(_ context.Context, issueNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, issueNumber)
	return nil
}

// Len reports the number of stored entries.
func (s *Store) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// evictOldest removes the entry with the oldest UpdatedAt.
// Must be called with s.mu held.
func (s *Store) evictOldest() {
	var (
		oldestKey int
		oldestAt  time.Time
		first     = true
	)
	for key, entry := range s.entries {
		if first || entry.UpdatedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.UpdatedAt
			first = false
		}
	}
	if !first {
		delete(s.entries, oldestKey)
	}
}
