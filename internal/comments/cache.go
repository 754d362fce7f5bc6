// Package comments owns the per-post comment trees shared by every view.
//
// The cache is the only canonical copy: views read a copy, mutate it
// optimistically and write it back. Values are deep-copied on the way in
// and out so no caller can alias cache state.
package comments

import (
	"sync"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
)

// Listener observes cache writes. tree is nil when postID was evicted.
type Listener func(postID string, tree []model.Comment)

// Cache maps post id to its comment tree. Safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	trees  map[string][]model.Comment
	subs   map[int]Listener
	nextID int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		trees: make(map[string][]model.Comment),
		subs:  make(map[int]Listener),
	}
}

// Get returns a copy of the tree for postID.
func (c *Cache) Get(postID string) ([]model.Comment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tree, ok := c.trees[postID]
	if !ok {
		return nil, false
	}
	return cloneTree(tree), true
}

// Set replaces the tree for postID and notifies subscribers.
func (c *Cache) Set(postID string, tree []model.Comment) {
	stored := cloneTree(tree)

	c.mu.Lock()
	c.trees[postID] = stored
	subs := c.listenersLocked()
	c.mu.Unlock()

	notify(subs, postID, stored)
}

// Update applies fn to the current tree for postID under the write lock and
// stores the result. fn receives a private copy (nil and ok=false on a
// miss) and must not retain it. Returning ok=false from fn skips the write.
func (c *Cache) Update(postID string, fn func(tree []model.Comment, exists bool) ([]model.Comment, bool)) {
	c.mu.Lock()
	cur, exists := c.trees[postID]
	next, write := fn(cloneTree(cur), exists)
	if !write {
		c.mu.Unlock()
		return
	}
	stored := cloneTree(next)
	c.trees[postID] = stored
	subs := c.listenersLocked()
	c.mu.Unlock()

	notify(subs, postID, stored)
}

// Subscribe registers fn for every later write. The returned func removes it.
func (c *Cache) Subscribe(fn Listener) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Reset evicts every tree, e.g. on sign-out.
func (c *Cache) Reset() {
	c.mu.Lock()
	evicted := make([]string, 0, len(c.trees))
	for id := range c.trees {
		evicted = append(evicted, id)
	}
	c.trees = make(map[string][]model.Comment)
	subs := c.listenersLocked()
	c.mu.Unlock()

	for _, id := range evicted {
		notify(subs, id, nil)
	}
}

// Len returns the number of cached posts.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.trees)
}

func (c *Cache) listenersLocked() []Listener {
	if len(c.subs) == 0 {
		return nil
	}
	out := make([]Listener, 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []Listener, postID string, tree []model.Comment) {
	for _, fn := range subs {
		fn(postID, cloneTree(tree))
	}
}

// cloneTree copies tree; an empty non-nil tree stays non-nil so a cached
// "no comments" is distinguishable from a miss.
func cloneTree(tree []model.Comment) []model.Comment {
	if tree == nil {
		return nil
	}
	out := model.CloneComments(tree)
	if out == nil {
		out = []model.Comment{}
	}
	return out
}
