package interact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/auth"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/i18n"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/lifecycle"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/logging"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/notify"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/otel"
)

// placeholderPrefix marks ids of optimistic items not yet on the server.
const placeholderPrefix = "temp-"

// IsPlaceholder reports whether id belongs to an unsent optimistic item.
func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, placeholderPrefix)
}

// Submit posts the composer text as a comment, or as a reply when a reply
// target is set. A sending placeholder is shown at once and the input is
// cleared. On success the tree is replaced by the server's; on failure the
// placeholder is removed and the input and reply target are restored.
// Submit blocks until the request settles.
func (c *Coordinator) Submit(ctx context.Context) error {
	c.mu.Lock()
	if !c.guard.Alive() {
		c.mu.Unlock()
		return lifecycle.ErrStale
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	text := strings.TrimSpace(c.input)
	if text == "" {
		c.mu.Unlock()
		c.toast(i18n.EmptyText, notify.Error)
		return ErrEmptyText
	}
	var viewer model.User
	err := auth.ErrNotAuthenticated
	if c.viewer != nil {
		viewer, err = c.viewer.Viewer()
	}
	if err != nil || viewer.ID == "" {
		c.mu.Unlock()
		c.toast(i18n.NotSignedIn, notify.Error)
		return fmt.Errorf("submit: %w", auth.ErrNotAuthenticated)
	}

	savedInput := c.input
	var savedReply *ReplyTarget
	if c.replyTo != nil {
		rt := *c.replyTo
		savedReply = &rt
	}

	placeholderID := placeholderPrefix + uuid.NewString()
	now := time.Now()
	inserted := false
	c.cache.Update(c.target.ID, func(tree []model.Comment, _ bool) ([]model.Comment, bool) {
		if savedReply == nil {
			inserted = true
			ph := model.Comment{ID: placeholderID, Author: viewer, Text: text, CreatedAt: now, IsSending: true}
			return append([]model.Comment{ph}, tree...), true
		}
		ci := indexComment(tree, savedReply.CommentID)
		if ci < 0 {
			return nil, false
		}
		inserted = true
		tree[ci].Replies = append(tree[ci].Replies, model.Reply{ID: placeholderID, Author: viewer, Text: text, CreatedAt: now, IsSending: true})
		tree[ci].ReplyCount++
		return tree, true
	})
	if !inserted {
		c.mu.Unlock()
		return ErrNotFound
	}
	c.submitting = true
	c.input = ""
	c.replyTo = nil
	c.mu.Unlock()
	c.changed()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
		c.changed()
	}()

	start := time.Now()
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.RequestTimeout)
	var rec model.Record
	if savedReply == nil {
		rec, err = c.backend.AddComment(reqCtx, c.target, text)
	} else {
		rec, err = c.backend.AddReply(reqCtx, c.target, savedReply.CommentID, text)
	}
	cancel()

	c.mu.Lock()
	if !c.guard.Alive() {
		c.mu.Unlock()
		c.opts.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindStale, Comp: "interact", PostID: c.target.ID})
		return lifecycle.ErrStale
	}

	if err != nil {
		c.cache.Update(c.target.ID, func(tree []model.Comment, _ bool) ([]model.Comment, bool) {
			return removePlaceholder(tree, placeholderID), true
		})
		c.input = savedInput
		c.replyTo = savedReply
		c.mu.Unlock()

		key := i18n.CommentFailed
		if savedReply != nil {
			key = i18n.ReplyFailed
		}
		c.toast(key, notify.Error)
		logging.Warn("interact: submit failed", "post", c.target.ID, "reply", savedReply != nil, "err", err)
		c.opts.Events.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindCommentError, Comp: "interact", PostID: c.target.ID, Err: err.Error(), Dur: time.Since(start)})
		return fmt.Errorf("submit: %w", err)
	}

	fresh := model.NormalizeComments(rec.Comments, viewer.ID)
	c.cache.Update(c.target.ID, func(tree []model.Comment, _ bool) ([]model.Comment, bool) {
		c.overlayPendingLocked(tree, fresh)
		return fresh, true
	})
	c.mu.Unlock()

	c.opts.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCommentSubmit, Comp: "interact", PostID: c.target.ID, Count: len(fresh), Dur: time.Since(start)})
	if c.opts.OnParentUpdated != nil && model.RecordID(rec) != "" {
		c.opts.OnParentUpdated(rec, c.target.Type)
	}
	return nil
}

func removePlaceholder(tree []model.Comment, id string) []model.Comment {
	out := make([]model.Comment, 0, len(tree))
	for _, cm := range tree {
		if cm.ID == id {
			continue
		}
		if ri := indexReply(cm.Replies, id); ri >= 0 {
			replies := make([]model.Reply, 0, len(cm.Replies)-1)
			replies = append(replies, cm.Replies[:ri]...)
			cm.Replies = append(replies, cm.Replies[ri+1:]...)
			if cm.ReplyCount > 0 {
				cm.ReplyCount--
			}
		}
		out = append(out, cm)
	}
	return out
}

// RequestDeleteComment asks the confirmer and, on confirm, deletes the
// comment in the background.
func (c *Coordinator) RequestDeleteComment(commentID string) {
	c.requestDelete(commentID, "", i18n.DeleteComment)
}

// RequestDeleteReply asks the confirmer and, on confirm, deletes the reply
// in the background.
func (c *Coordinator) RequestDeleteReply(commentID, replyID string) {
	c.requestDelete(commentID, replyID, i18n.DeleteReply)
}

func (c *Coordinator) requestDelete(commentID, replyID string, msg i18n.Key) {
	c.opts.Confirmer.Confirm(notify.Prompt{
		Title:   i18n.T(c.opts.Locale, i18n.DeleteTitle),
		Message: i18n.T(c.opts.Locale, msg),
		OnConfirm: func() {
			go func() {
				if err := c.Delete(c.base, commentID, replyID); err != nil {
					logging.Debug("interact: delete not applied", "comment", commentID, "reply", replyID, "err", err)
				}
			}()
		},
	})
}

// Delete removes a comment (replyID "") or a reply from the tree at once,
// then deletes it on the server. On failure the whole pre-delete tree is
// restored. Delete blocks until the request settles.
func (c *Coordinator) Delete(ctx context.Context, commentID, replyID string) error {
	c.mu.Lock()
	if !c.guard.Alive() {
		c.mu.Unlock()
		return lifecycle.ErrStale
	}
	if c.submitting {
		c.mu.Unlock()
		return ErrBusy
	}
	if IsPlaceholder(commentID) || IsPlaceholder(replyID) {
		c.mu.Unlock()
		return ErrNotFound
	}

	snapshot, _ := c.cache.Get(c.target.ID)
	removed := false
	c.cache.Update(c.target.ID, func(tree []model.Comment, _ bool) ([]model.Comment, bool) {
		ci := indexComment(tree, commentID)
		if ci < 0 {
			return nil, false
		}
		if replyID == "" {
			removed = true
			return append(tree[:ci:ci], tree[ci+1:]...), true
		}
		ri := indexReply(tree[ci].Replies, replyID)
		if ri < 0 {
			return nil, false
		}
		removed = true
		replies := tree[ci].Replies
		tree[ci].Replies = append(replies[:ri:ri], replies[ri+1:]...)
		if tree[ci].ReplyCount > 0 {
			tree[ci].ReplyCount--
		}
		return tree, true
	})
	if !removed {
		c.mu.Unlock()
		return ErrNotFound
	}
	parked := c.dropPendingLocked(commentID, replyID)
	c.submitting = true
	c.mu.Unlock()
	c.changed()

	defer func() {
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
		c.changed()
	}()

	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.RequestTimeout)
	var err error
	if replyID == "" {
		err = c.backend.DeleteComment(reqCtx, c.target, commentID)
	} else {
		err = c.backend.DeleteReply(reqCtx, c.target, commentID, replyID)
	}
	cancel()

	c.mu.Lock()
	if !c.guard.Alive() {
		c.mu.Unlock()
		return lifecycle.ErrStale
	}
	if err != nil {
		c.cache.Set(c.target.ID, snapshot)
		c.restorePendingLocked(parked)
		c.mu.Unlock()

		c.toast(i18n.DeleteFailed, notify.Error)
		logging.Warn("interact: delete failed, restored", "post", c.target.ID, "comment", commentID, "reply", replyID, "err", err)
		c.opts.Events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindCommentRollback, Comp: "interact", PostID: c.target.ID, ItemID: commentID, Err: err.Error()})
		return fmt.Errorf("delete: %w", err)
	}
	c.mu.Unlock()

	c.toast(i18n.CommentDeleted, notify.Success)
	c.opts.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindCommentDelete, Comp: "interact", PostID: c.target.ID, ItemID: firstID(replyID, commentID)})
	return nil
}

// dropPendingLocked parks the like state of deleted items and returns it,
// so a failed delete can resume it. Requests already in flight settle
// against the parked entry.
func (c *Coordinator) dropPendingLocked(commentID, replyID string) map[likeKey]*pendingLike {
	parked := make(map[likeKey]*pendingLike)
	for key, p := range c.pending {
		hit := key == replyKey(commentID, replyID)
		if replyID == "" {
			hit = (key.parentID == "" && key.itemID == commentID) || key.parentID == commentID
		}
		if !hit {
			continue
		}
		if p.timer != nil {
			p.timer.Stop()
			p.timer = nil
		}
		p.dirty = false
		parked[key] = p
		delete(c.pending, key)
	}
	return parked
}

// restorePendingLocked puts parked like state back after the items it
// belongs to were restored, and re-arms each key. A key still in flight
// is re-sent once its request settles.
func (c *Coordinator) restorePendingLocked(parked map[likeKey]*pendingLike) {
	for key, p := range parked {
		if _, ok := c.pending[key]; ok {
			continue
		}
		c.pending[key] = p
		c.scheduleLocked(key)
	}
}

func firstID(ids ...string) string {
	for _, id := range ids {
		if id != "" {
			return id
		}
	}
	return ""
}
