package feed

import (
	"sync"
	"time"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
)

// DeletedSet holds ids deleted during this session, so a refresh that races
// the server's own removal never resurrects them.
type DeletedSet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewDeletedSet returns an empty set.
func NewDeletedSet() *DeletedSet {
	return &DeletedSet{ids: make(map[string]struct{})}
}

// Add records id as deleted.
func (d *DeletedSet) Add(id string) {
	d.mu.Lock()
	d.ids[id] = struct{}{}
	d.mu.Unlock()
}

// Remove forgets id, used when a delete is rolled back.
func (d *DeletedSet) Remove(id string) {
	d.mu.Lock()
	delete(d.ids, id)
	d.mu.Unlock()
}

// Contains reports whether id was deleted.
func (d *DeletedSet) Contains(id string) bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.ids[id]
	return ok
}

// SuggestionCache keeps the last company/user suggestion list so other
// screens can show it without a fetch.
type SuggestionCache struct {
	mu      sync.RWMutex
	users   []model.User
	updated time.Time
}

// Set replaces the cached list.
func (s *SuggestionCache) Set(users []model.User) {
	cp := make([]model.User, len(users))
	copy(cp, users)

	s.mu.Lock()
	s.users = cp
	s.updated = time.Now()
	s.mu.Unlock()
}

// Get returns the cached list and when it was stored. ok is false if the
// cache was never filled.
func (s *SuggestionCache) Get() (users []model.User, updated time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.updated.IsZero() {
		return nil, time.Time{}, false
	}
	out := make([]model.User, len(s.users))
	copy(out, s.users)
	return out, s.updated, true
}
