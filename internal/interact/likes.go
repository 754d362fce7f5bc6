package interact

import (
	"time"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/i18n"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/lifecycle"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/logging"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/notify"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/otel"
)

// likeKey identifies a comment (parentID "") or a reply under parentID.
type likeKey struct {
	parentID string
	itemID   string
}

func commentKey(commentID string) likeKey { return likeKey{itemID: commentID} }

func replyKey(commentID, replyID string) likeKey {
	return likeKey{parentID: commentID, itemID: replyID}
}

// pendingLike is the server-side baseline of a key with unsynced toggles.
// It exists from the first toggle until the key settles.
type pendingLike struct {
	baseLiked bool
	baseCount int

	timer    *time.Timer
	seq      uint64
	inflight bool
	dirty    bool // the timer fired while a request was in flight
}

// likeFields points into a tree at one comment or reply.
type likeFields struct {
	liked    *bool
	count    *int
	disliked *bool
}

func locate(tree []model.Comment, key likeKey) (likeFields, bool) {
	if key.parentID == "" {
		ci := indexComment(tree, key.itemID)
		if ci < 0 {
			return likeFields{}, false
		}
		c := &tree[ci]
		return likeFields{&c.Liked, &c.LikeCount, &c.Disliked}, true
	}
	ci := indexComment(tree, key.parentID)
	if ci < 0 {
		return likeFields{}, false
	}
	ri := indexReply(tree[ci].Replies, key.itemID)
	if ri < 0 {
		return likeFields{}, false
	}
	r := &tree[ci].Replies[ri]
	return likeFields{&r.Liked, &r.LikeCount, &r.Disliked}, true
}

func flip(f likeFields) {
	*f.liked = !*f.liked
	if *f.liked {
		*f.count++
	} else if *f.count > 0 {
		*f.count--
	}
}

// ToggleCommentLike likes or unlikes a comment.
func (c *Coordinator) ToggleCommentLike(commentID string) error {
	return c.toggle(commentKey(commentID), false)
}

// ToggleReplyLike likes or unlikes a reply.
func (c *Coordinator) ToggleReplyLike(commentID, replyID string) error {
	return c.toggle(replyKey(commentID, replyID), false)
}

// DislikeComment toggles the local dislike mark, unliking first if needed.
func (c *Coordinator) DislikeComment(commentID string) error {
	return c.toggle(commentKey(commentID), true)
}

// DislikeReply toggles the local dislike mark on a reply.
func (c *Coordinator) DislikeReply(commentID, replyID string) error {
	return c.toggle(replyKey(commentID, replyID), true)
}

// toggle applies a like or dislike tap to the tree at once. A like state
// change snapshots the server baseline on first touch and (re)arms the
// quiet-period timer for the key.
func (c *Coordinator) toggle(key likeKey, dislike bool) error {
	if IsPlaceholder(key.itemID) || IsPlaceholder(key.parentID) {
		return ErrNotFound
	}
	c.mu.Lock()
	if !c.guard.Alive() {
		c.mu.Unlock()
		return lifecycle.ErrStale
	}

	found := false
	flipped := false
	c.cache.Update(c.target.ID, func(tree []model.Comment, _ bool) ([]model.Comment, bool) {
		f, ok := locate(tree, key)
		if !ok {
			return nil, false
		}
		found = true

		if dislike {
			*f.disliked = !*f.disliked
			if *f.disliked && *f.liked {
				flipped = true
			}
		} else {
			flipped = true
			if !*f.liked {
				*f.disliked = false
			}
		}

		if flipped {
			if _, ok := c.pending[key]; !ok {
				c.pending[key] = &pendingLike{baseLiked: *f.liked, baseCount: *f.count}
			}
			flip(f)
		}
		return tree, true
	})
	if !found {
		c.mu.Unlock()
		return ErrNotFound
	}
	if flipped {
		c.scheduleLocked(key)
	}
	c.mu.Unlock()
	return nil
}

// scheduleLocked cancels any armed timer for key and arms a new one.
func (c *Coordinator) scheduleLocked(key likeKey) {
	p := c.pending[key]
	if p.timer != nil {
		p.timer.Stop()
	}
	p.seq++
	seq := p.seq
	p.timer = time.AfterFunc(c.opts.QuietPeriod, func() { c.flush(key, seq) })
}

// flush runs when the quiet period for key elapses.
func (c *Coordinator) flush(key likeKey, seq uint64) {
	c.mu.Lock()
	p := c.pending[key]
	if !c.guard.Alive() || p == nil || p.seq != seq {
		c.mu.Unlock()
		return
	}
	p.timer = nil
	if p.inflight {
		p.dirty = true
		c.mu.Unlock()
		return
	}
	c.sendLocked(key, p)
}

// sendLocked is called with c.mu held and releases it. It sends one server
// toggle if the working state differs from the baseline; an even number of
// taps settles without a request.
func (c *Coordinator) sendLocked(key likeKey, p *pendingLike) {
	var liked bool
	var count int
	tree, _ := c.cache.Get(c.target.ID)
	f, ok := locate(tree, key)
	if ok {
		liked, count = *f.liked, *f.count
	}
	if !ok || liked == p.baseLiked {
		delete(c.pending, key)
		c.mu.Unlock()
		logging.Debug("interact: like settled locally", "post", c.target.ID, "item", key.itemID)
		c.opts.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindLikeSkipped, Comp: "interact", PostID: c.target.ID, ItemID: key.itemID})
		return
	}
	p.inflight = true
	c.mu.Unlock()

	start := time.Now()
	ctx, cancel := c.requestContext()
	var err error
	if key.parentID == "" {
		err = c.backend.ToggleCommentLike(ctx, c.target, key.itemID)
	} else {
		err = c.backend.ToggleReplyLike(ctx, c.target, key.parentID, key.itemID)
	}
	cancel()

	ev := otel.Event{Level: otel.LevelInfo, Kind: otel.KindLikeFlush, Comp: "interact", PostID: c.target.ID, ItemID: key.itemID, Dur: time.Since(start)}
	if err != nil {
		ev.Level, ev.Kind, ev.Err = otel.LevelError, otel.KindLikeError, err.Error()
		logging.Warn("interact: like sync failed", "post", c.target.ID, "item", key.itemID, "err", err)
		c.toast(i18n.LikeFailed, notify.Error)
	}
	c.opts.Events.Emit(ev)

	c.settle(key, p, liked, count, err)
}

// settle reconciles key after its request returns. On success the sent
// state becomes the baseline, even for a key parked by Delete. A newer
// armed timer keeps the key pending; a deferred flush is sent now.
// Otherwise the key settles, rolling back to the baseline on failure.
func (c *Coordinator) settle(key likeKey, p *pendingLike, sentLiked bool, sentCount int, err error) {
	c.mu.Lock()
	p.inflight = false
	if err == nil {
		p.baseLiked, p.baseCount = sentLiked, sentCount
	}
	if !c.guard.Alive() || c.pending[key] != p {
		c.mu.Unlock()
		c.opts.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindStale, Comp: "interact", ItemID: key.itemID})
		return
	}

	switch {
	case p.dirty:
		p.dirty = false
		c.sendLocked(key, p)
		return
	case p.timer != nil:
	case err != nil:
		c.cache.Update(c.target.ID, func(tree []model.Comment, _ bool) ([]model.Comment, bool) {
			f, ok := locate(tree, key)
			if !ok {
				return nil, false
			}
			*f.liked, *f.count = p.baseLiked, p.baseCount
			return tree, true
		})
		delete(c.pending, key)
	default:
		delete(c.pending, key)
	}
	c.mu.Unlock()
}

// overlayPendingLocked copies the optimistic like state of every pending
// key from old onto fresh, so replacing the tree with a server copy does
// not drop unsynced taps.
func (c *Coordinator) overlayPendingLocked(old, fresh []model.Comment) {
	for key := range c.pending {
		from, ok := locate(old, key)
		if !ok {
			continue
		}
		to, ok := locate(fresh, key)
		if !ok {
			continue
		}
		*to.liked, *to.count, *to.disliked = *from.liked, *from.count, *from.disliked
	}
}
