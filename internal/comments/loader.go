package comments

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/logging"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
)

// DetailFetcher returns a post's detail record with its nested comments.
type DetailFetcher interface {
	Detail(ctx context.Context, target model.Target) (model.Record, error)
}

// Loader fills the cache from the detail endpoint on a miss.
type Loader struct {
	cache   *Cache
	fetcher DetailFetcher
	viewer  func() string
	group   singleflight.Group
}

// NewLoader returns a loader. viewer returns the signed-in user id used to
// compute Liked; it may be nil.
func NewLoader(c *Cache, f DetailFetcher, viewer func() string) *Loader {
	if viewer == nil {
		viewer = func() string { return "" }
	}
	return &Loader{cache: c, fetcher: f, viewer: viewer}
}

// Cache returns the cache the loader writes to.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Load returns the cached tree for target, fetching it on a miss. Concurrent
// misses for the same post share one request.
func (l *Loader) Load(ctx context.Context, target model.Target) ([]model.Comment, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if tree, ok := l.cache.Get(target.ID); ok {
		return tree, nil
	}
	return l.fetch(ctx, target, false)
}

// Reload fetches target and overwrites the cached tree.
func (l *Loader) Reload(ctx context.Context, target model.Target) ([]model.Comment, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	return l.fetch(ctx, target, true)
}

func (l *Loader) fetch(ctx context.Context, target model.Target, overwrite bool) ([]model.Comment, error) {
	v, err, shared := l.group.Do(target.ID, func() (interface{}, error) {
		rec, err := l.fetcher.Detail(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("load comments for %s: %w", target.ID, err)
		}
		tree := model.NormalizeComments(rec.Comments, l.viewer())

		// A view may have written the tree while the request was out; keep
		// its state unless asked to overwrite.
		var result []model.Comment
		l.cache.Update(target.ID, func(cur []model.Comment, exists bool) ([]model.Comment, bool) {
			if exists && !overwrite {
				result = cur
				return nil, false
			}
			result = tree
			return tree, true
		})
		return result, nil
	})
	if err != nil {
		logging.Warn("comments: load failed", "post", target.ID, "err", err)
		return nil, err
	}
	if shared {
		logging.Debug("comments: shared in-flight load", "post", target.ID)
	}
	return model.CloneComments(v.([]model.Comment)), nil
}
