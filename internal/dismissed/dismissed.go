// Package dismissed persists the ids of feed items the user has hidden.
//
// The set is append-only: an id once dismissed stays hidden for the life of
// the device store.
package dismissed

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/kv"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/logging"
)

// Key is the kv key holding the JSON array of dismissed ids.
const Key = "dismissedPosts"

// Store is the dismissed-id set. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	kv    kv.Store
	ids   map[string]struct{}
	order []string
}

// Open loads the persisted set from s. A corrupt value is logged and
// treated as empty; it is overwritten on the next Add.
func Open(s kv.Store) (*Store, error) {
	d := &Store{kv: s, ids: make(map[string]struct{})}

	raw, ok, err := s.Get(Key)
	if err != nil {
		return nil, fmt.Errorf("load dismissed ids: %w", err)
	}
	if !ok || raw == "" {
		return d, nil
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		logging.Warn("dismissed: ignoring corrupt value", "err", err)
		return d, nil
	}
	for _, id := range ids {
		if _, dup := d.ids[id]; dup || id == "" {
			continue
		}
		d.ids[id] = struct{}{}
		d.order = append(d.order, id)
	}
	return d, nil
}

// Contains reports whether id has been dismissed.
func (d *Store) Contains(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.ids[id]
	return ok
}

// Add dismisses id and persists the set. Adding an existing id is a no-op.
// If the write fails the id is not added.
func (d *Store) Add(id string) error {
	if id == "" {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.ids[id]; ok {
		return nil
	}

	next := append(append([]string(nil), d.order...), id)
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode dismissed ids: %w", err)
	}
	if err := d.kv.Set(Key, string(data)); err != nil {
		return fmt.Errorf("save dismissed ids: %w", err)
	}

	d.ids[id] = struct{}{}
	d.order = next
	return nil
}

// IDs returns the dismissed ids in dismissal order.
func (d *Store) IDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Len returns the number of dismissed ids.
func (d *Store) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}
