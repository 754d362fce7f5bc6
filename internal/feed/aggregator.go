// Package feed merges the general-post, shipment-ad and empty-truck-ad
// collections into the single home timeline.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/auth"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/dismissed"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/i18n"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/lifecycle"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/logging"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/otel"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/publish"
)

// DefaultNewItemTTL is how long the freshly published item stays flagged.
const DefaultNewItemTTL = 600 * time.Millisecond

var (
	// ErrLoadFailed wraps any collection fetch failure.
	ErrLoadFailed = errors.New("feed: load failed")
	// ErrNotFound is returned for ids not in the working list.
	ErrNotFound = errors.New("feed: item not in feed")
	// ErrNoMutator is returned by mutations when no Mutator is configured.
	ErrNoMutator = errors.New("feed: no mutator configured")
)

// Source fetches one content collection.
type Source interface {
	Fetch(ctx context.Context, typ model.ItemType) (model.Collection, error)
}

// Mutator performs post-level writes.
type Mutator interface {
	DeletePost(ctx context.Context, target model.Target) error
	LikePost(ctx context.Context, target model.Target) error
}

// Options configures an Aggregator. Zero fields get defaults; Dismissed,
// Publish, Mutator and Events are optional.
type Options struct {
	NewItemTTL  time.Duration
	Locale      i18n.Locale
	Dismissed   *dismissed.Store
	Deleted     *DeletedSet
	Suggestions *SuggestionCache
	Publish     *publish.Machine
	Mutator     Mutator
	Events      *otel.Logger
}

// Aggregator owns the working feed list of one screen.
// Safe for concurrent use.
type Aggregator struct {
	src  Source
	opts Options

	mu     sync.Mutex
	items  []model.FeedItem
	loaded bool
	errMsg string
	gen    uint64 // bumped on every change to items

	newTimer *time.Timer
	newSeq   uint64

	subs    map[int]func([]model.FeedItem)
	nextSub int

	guard lifecycle.Guard
}

// NewAggregator returns an aggregator over src.
func NewAggregator(src Source, opts Options) *Aggregator {
	if opts.NewItemTTL <= 0 {
		opts.NewItemTTL = DefaultNewItemTTL
	}
	if opts.Locale == "" {
		opts.Locale = i18n.DefaultLocale
	}
	if opts.Deleted == nil {
		opts.Deleted = NewDeletedSet()
	}
	if opts.Suggestions == nil {
		opts.Suggestions = &SuggestionCache{}
	}
	a := &Aggregator{
		src:  src,
		opts: opts,
		subs: make(map[int]func([]model.FeedItem)),
	}
	a.guard.OnTeardown(a.stopNewTimer)
	return a
}

// Refresh fetches the three collections concurrently and replaces the
// working list. publishing marks the first id absent from the previous list
// as new. Any fetch failure fails the whole refresh; the displayed list is
// kept unless this was the first load.
func (a *Aggregator) Refresh(ctx context.Context, publishing bool) error {
	if !a.guard.Alive() {
		return lifecycle.ErrStale
	}
	start := time.Now()
	a.opts.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFeedFetchStart, Comp: "feed"})

	results, err := a.fetchAll(ctx)
	if err != nil {
		return a.fail(err, start)
	}

	merged := Merge(results, a.hidden)
	var suggestions []model.User
	for _, c := range results {
		for _, u := range c.Suggestions {
			suggestions = append(suggestions, u.User())
		}
	}

	a.mu.Lock()
	if !a.guard.Alive() {
		a.mu.Unlock()
		a.opts.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindStale, Comp: "feed"})
		return lifecycle.ErrStale
	}
	newID := ""
	if publishing && a.loaded {
		newID = MarkNew(merged, a.items)
	}
	a.items = merged
	a.loaded = true
	a.errMsg = ""
	a.gen++
	if newID != "" {
		a.armNewTimerLocked(newID)
	}
	items, subs := a.snapshotLocked()
	a.mu.Unlock()

	notify(subs, items)
	if len(suggestions) > 0 {
		a.opts.Suggestions.Set(suggestions)
	}

	logging.Info("feed: refreshed", "items", len(items), "dur", time.Since(start))
	a.opts.Events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindFeedFetchComplete,
		Comp:  "feed",
		Count: len(items),
		Dur:   time.Since(start),
	})
	if newID != "" {
		a.opts.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFeedNewItem, Comp: "feed", PostID: newID})
	}
	if a.opts.Publish != nil {
		a.opts.Publish.Succeed()
	}
	return nil
}

func (a *Aggregator) fetchAll(ctx context.Context) ([]model.Collection, error) {
	results := make([]model.Collection, len(model.ItemTypes))
	g, gctx := errgroup.WithContext(ctx)
	for i, typ := range model.ItemTypes {
		g.Go(func() error {
			c, err := a.src.Fetch(gctx, typ)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", typ, err)
			}
			results[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *Aggregator) fail(cause error, start time.Time) error {
	a.mu.Lock()
	if !a.guard.Alive() {
		a.mu.Unlock()
		return lifecycle.ErrStale
	}
	a.errMsg = i18n.T(a.opts.Locale, i18n.LoadFailed)
	if !a.loaded {
		a.items = nil
		a.gen++
	}
	items, subs := a.snapshotLocked()
	a.mu.Unlock()

	notify(subs, items)
	logging.Error("feed: refresh failed", "err", cause)
	a.opts.Events.Emit(otel.Event{
		Level: otel.LevelError,
		Kind:  otel.KindFeedFetchError,
		Comp:  "feed",
		Err:   cause.Error(),
		Dur:   time.Since(start),
	})
	if a.opts.Publish != nil {
		a.opts.Publish.Fail()
	}
	return fmt.Errorf("%w: %w", ErrLoadFailed, cause)
}

func (a *Aggregator) hidden(id string) bool {
	if a.opts.Deleted.Contains(id) {
		return true
	}
	return a.opts.Dismissed != nil && a.opts.Dismissed.Contains(id)
}

// Merge normalizes the collections (indexed like model.ItemTypes), drops
// duplicate and hidden ids, and sorts newest first. Ties keep collection
// order, then array order.
func Merge(results []model.Collection, hidden func(id string) bool) []model.FeedItem {
	var merged []model.FeedItem
	seen := make(map[string]struct{})
	for i, c := range results {
		if i >= len(model.ItemTypes) {
			break
		}
		typ := model.ItemTypes[i]
		items, skipped := model.NormalizeFeedItems(c.Records, typ)
		if skipped > 0 {
			logging.Warn("feed: skipped records without id", "type", typ, "count", skipped)
		}
		for _, it := range items {
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
			if hidden != nil && hidden(it.ID) {
				continue
			}
			merged = append(merged, it)
		}
	}
	model.SortFeed(merged)
	return merged
}

// MarkNew flags the first item of next whose id is absent from prev and
// returns its id, or "" if every id was already present.
func MarkNew(next, prev []model.FeedItem) string {
	old := make(map[string]struct{}, len(prev))
	for _, it := range prev {
		old[it.ID] = struct{}{}
	}
	for i := range next {
		if _, ok := old[next[i].ID]; !ok {
			next[i].IsNew = true
			return next[i].ID
		}
	}
	return ""
}

func (a *Aggregator) armNewTimerLocked(id string) {
	if a.newTimer != nil {
		a.newTimer.Stop()
	}
	a.newSeq++
	seq := a.newSeq
	a.newTimer = time.AfterFunc(a.opts.NewItemTTL, func() { a.clearNew(id, seq) })
}

func (a *Aggregator) clearNew(id string, seq uint64) {
	a.mu.Lock()
	if !a.guard.Alive() || seq != a.newSeq {
		a.mu.Unlock()
		return
	}
	a.newTimer = nil
	changed := false
	for i := range a.items {
		if a.items[i].ID == id && a.items[i].IsNew {
			a.items[i].IsNew = false
			changed = true
		}
	}
	if !changed {
		a.mu.Unlock()
		return
	}
	a.gen++
	items, subs := a.snapshotLocked()
	a.mu.Unlock()

	notify(subs, items)
}

func (a *Aggregator) stopNewTimer() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.newTimer != nil {
		a.newTimer.Stop()
		a.newTimer = nil
	}
	a.newSeq++
}

// Dismiss hides id permanently and drops it from the working list.
func (a *Aggregator) Dismiss(id string) error {
	if a.opts.Dismissed != nil {
		if err := a.opts.Dismissed.Add(id); err != nil {
			return fmt.Errorf("dismiss %s: %w", id, err)
		}
	}

	a.mu.Lock()
	if !a.guard.Alive() {
		a.mu.Unlock()
		return lifecycle.ErrStale
	}
	removed := a.removeLocked(id)
	items, subs := a.snapshotLocked()
	a.mu.Unlock()

	if removed {
		notify(subs, items)
	}
	a.opts.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFeedDismiss, Comp: "feed", PostID: id})
	return nil
}

// DeletePost removes id from the list at once, then deletes it on the
// server. On failure the previous list is restored, or the item reinserted
// if the list changed meanwhile.
func (a *Aggregator) DeletePost(ctx context.Context, id string) error {
	if a.opts.Mutator == nil {
		return ErrNoMutator
	}

	a.mu.Lock()
	idx := a.indexLocked(id)
	if idx < 0 {
		a.mu.Unlock()
		return ErrNotFound
	}
	item := a.items[idx]
	snapshot := model.CloneItems(a.items)
	a.removeLocked(id)
	gen := a.gen
	items, subs := a.snapshotLocked()
	a.mu.Unlock()

	a.opts.Deleted.Add(id)
	notify(subs, items)

	err := a.opts.Mutator.DeletePost(ctx, item.Target())

	if err == nil {
		logging.Info("feed: post deleted", "id", id, "type", item.Type)
		a.opts.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindFeedDelete, Comp: "feed", PostID: id})
		return nil
	}

	a.opts.Deleted.Remove(id)
	logging.Warn("feed: delete failed, restoring", "id", id, "err", err)
	a.opts.Events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindFeedDelete, Comp: "feed", PostID: id, Err: err.Error()})

	a.mu.Lock()
	if !a.guard.Alive() {
		a.mu.Unlock()
		return lifecycle.ErrStale
	}
	if a.gen == gen {
		a.items = snapshot
	} else if a.indexLocked(id) < 0 {
		a.items = append(model.CloneItems(a.items), item)
		model.SortFeed(a.items)
	}
	a.gen++
	items, subs = a.snapshotLocked()
	a.mu.Unlock()

	notify(subs, items)
	return fmt.Errorf("delete post %s: %w", id, err)
}

// ToggleLike flips viewerID's like on a post at once and syncs it. The
// flip is undone if the request fails.
func (a *Aggregator) ToggleLike(ctx context.Context, id, viewerID string) error {
	if viewerID == "" {
		return auth.ErrNotAuthenticated
	}
	if a.opts.Mutator == nil {
		return ErrNoMutator
	}

	a.mu.Lock()
	idx := a.indexLocked(id)
	if idx < 0 {
		a.mu.Unlock()
		return ErrNotFound
	}
	target := a.items[idx].Target()
	a.flipLikeLocked(idx, viewerID)
	items, subs := a.snapshotLocked()
	a.mu.Unlock()
	notify(subs, items)

	err := a.opts.Mutator.LikePost(ctx, target)
	if err == nil {
		return nil
	}

	logging.Warn("feed: like failed, reverting", "id", id, "err", err)
	a.mu.Lock()
	if !a.guard.Alive() {
		a.mu.Unlock()
		return lifecycle.ErrStale
	}
	if idx := a.indexLocked(id); idx >= 0 {
		a.flipLikeLocked(idx, viewerID)
	}
	items, subs = a.snapshotLocked()
	a.mu.Unlock()

	notify(subs, items)
	return fmt.Errorf("like post %s: %w", id, err)
}

func (a *Aggregator) flipLikeLocked(idx int, viewerID string) {
	item := a.items[idx]
	if item.ReactedBy(viewerID) {
		kept := make([]model.Reaction, 0, len(item.Reactions))
		for _, r := range item.Reactions {
			if r.UserID != viewerID {
				kept = append(kept, r)
			}
		}
		item.Reactions = kept
	} else {
		item.Reactions = append(append([]model.Reaction(nil), item.Reactions...), model.Reaction{UserID: viewerID, Type: "like"})
	}
	a.items = model.CloneItems(a.items)
	a.items[idx] = item
	a.gen++
}

// ApplyRecord replaces the item matching a fresh server record, e.g. the
// parent returned after a comment was added. Unknown ids are ignored.
func (a *Aggregator) ApplyRecord(rec model.Record, typ model.ItemType) {
	fresh, err := model.NormalizeFeedItem(rec, typ)
	if err != nil {
		logging.Debug("feed: ignoring parent update", "err", err)
		return
	}

	a.mu.Lock()
	idx := a.indexLocked(fresh.ID)
	if idx < 0 || !a.guard.Alive() {
		a.mu.Unlock()
		return
	}
	fresh.IsNew = a.items[idx].IsNew
	a.items = model.CloneItems(a.items)
	a.items[idx] = fresh
	a.gen++
	items, subs := a.snapshotLocked()
	a.mu.Unlock()

	notify(subs, items)
}

// Items returns a copy of the working list.
func (a *Aggregator) Items() []model.FeedItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	return model.CloneItems(a.items)
}

// Item returns the item with id.
func (a *Aggregator) Item(id string) (model.FeedItem, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if idx := a.indexLocked(id); idx >= 0 {
		return a.items[idx], true
	}
	return model.FeedItem{}, false
}

// Err returns the localized message of the last failed refresh, or "" once
// a refresh succeeds.
func (a *Aggregator) Err() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errMsg
}

// Loaded reports whether any refresh has succeeded.
func (a *Aggregator) Loaded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loaded
}

// Suggestions returns the shared suggestion cache.
func (a *Aggregator) Suggestions() *SuggestionCache {
	return a.opts.Suggestions
}

// Subscribe registers fn for every change to the working list.
func (a *Aggregator) Subscribe(fn func([]model.FeedItem)) (cancel func()) {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, id)
			a.mu.Unlock()
		})
	}
}

// Close tears the aggregator down. Late fetch results are discarded and
// the new-item timer is stopped.
func (a *Aggregator) Close() {
	a.guard.Teardown()
}

func (a *Aggregator) indexLocked(id string) int {
	for i := range a.items {
		if a.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (a *Aggregator) removeLocked(id string) bool {
	idx := a.indexLocked(id)
	if idx < 0 {
		return false
	}
	next := make([]model.FeedItem, 0, len(a.items)-1)
	next = append(next, a.items[:idx]...)
	next = append(next, a.items[idx+1:]...)
	a.items = next
	a.gen++
	return true
}

func (a *Aggregator) snapshotLocked() ([]model.FeedItem, []func([]model.FeedItem)) {
	items := model.CloneItems(a.items)
	subs := make([]func([]model.FeedItem), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	return items, subs
}

func notify(subs []func([]model.FeedItem), items []model.FeedItem) {
	for _, fn := range subs {
		fn(model.CloneItems(items))
	}
}
