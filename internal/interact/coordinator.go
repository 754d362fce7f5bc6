// Package interact applies like, comment, reply and delete actions to a
// post's comment tree optimistically and reconciles them with the server.
//
// All tree state lives in the shared comments.Cache; a Coordinator writes
// through it on every change, so every view sees the same tree. Lock order
// is Coordinator.mu before the cache lock: cache listeners must not call
// back into a Coordinator synchronously.
package interact

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/comments"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/i18n"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/lifecycle"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/notify"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/otel"
)

// Defaults for Options.
const (
	DefaultQuietPeriod    = 500 * time.Millisecond
	DefaultRequestTimeout = 15 * time.Second
)

var (
	// ErrEmptyText rejects a comment or reply that is blank after trimming.
	ErrEmptyText = errors.New("interact: empty text")
	// ErrBusy is returned when an add or delete is already in flight; the
	// call changes nothing.
	ErrBusy = errors.New("interact: another submission is in flight")
	// ErrNotFound is returned for comment or reply ids not in the tree.
	ErrNotFound = errors.New("interact: item not found")
)

// Backend is the server side of every mutation. Add calls return the
// updated parent post/ad record with its full comment tree.
type Backend interface {
	ToggleCommentLike(ctx context.Context, target model.Target, commentID string) error
	ToggleReplyLike(ctx context.Context, target model.Target, commentID, replyID string) error
	AddComment(ctx context.Context, target model.Target, text string) (model.Record, error)
	AddReply(ctx context.Context, target model.Target, commentID, text string) (model.Record, error)
	DeleteComment(ctx context.Context, target model.Target, commentID string) error
	DeleteReply(ctx context.Context, target model.Target, commentID, replyID string) error
}

// ViewerSource resolves the signed-in user. *auth.Session implements it.
type ViewerSource interface {
	Viewer() (model.User, error)
}

// Options configures a Coordinator. Zero values get defaults.
type Options struct {
	QuietPeriod    time.Duration
	RequestTimeout time.Duration
	Locale         i18n.Locale
	Notifier       notify.Notifier
	Confirmer      notify.Confirmer
	Events         *otel.Logger

	// OnParentUpdated receives the parent record the server returns after
	// a comment or reply is added.
	OnParentUpdated func(rec model.Record, typ model.ItemType)
	// OnChange observes input, reply target and submitting changes. Tree
	// changes are observed through the cache.
	OnChange func(State)
}

// ReplyTarget is the comment a reply will be posted under.
type ReplyTarget struct {
	CommentID  string
	AuthorName string
}

// State is a snapshot of one coordinator's view state.
type State struct {
	Comments     []model.Comment
	Loaded       bool
	Input        string
	ReplyTo      *ReplyTarget
	Submitting   bool
	PendingLikes int
}

// Coordinator handles the actions of one view on one post's comments.
// Safe for concurrent use.
type Coordinator struct {
	target  model.Target
	cache   *comments.Cache
	backend Backend
	viewer  ViewerSource
	opts    Options
	base    context.Context

	mu         sync.Mutex
	input      string
	replyTo    *ReplyTarget
	submitting bool
	pending    map[likeKey]*pendingLike

	guard lifecycle.Guard
}

// New returns a coordinator for target. Requests derive from ctx's values
// but are not cancelled with it; Close discards their results instead.
func New(ctx context.Context, target model.Target, cache *comments.Cache, backend Backend, viewer ViewerSource, opts Options) (*Coordinator, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.Locale == "" {
		opts.Locale = i18n.DefaultLocale
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Confirmer == nil {
		opts.Confirmer = notify.AutoConfirm
	}

	c := &Coordinator{
		target:  target,
		cache:   cache,
		backend: backend,
		viewer:  viewer,
		opts:    opts,
		base:    context.WithoutCancel(ctx),
		pending: make(map[likeKey]*pendingLike),
	}
	c.guard.OnTeardown(c.stopTimers)
	return c, nil
}

// Target returns the post this coordinator is bound to.
func (c *Coordinator) Target() model.Target {
	return c.target
}

// State returns a snapshot of the tree and input state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Coordinator) stateLocked() State {
	tree, ok := c.cache.Get(c.target.ID)
	s := State{
		Comments:     tree,
		Loaded:       ok,
		Input:        c.input,
		Submitting:   c.submitting,
		PendingLikes: len(c.pending),
	}
	if c.replyTo != nil {
		rt := *c.replyTo
		s.ReplyTo = &rt
	}
	return s
}

// SetInput replaces the composer text.
func (c *Coordinator) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
	c.changed()
}

// StartReply targets commentID and prefixes the input with a mention of
// its author.
func (c *Coordinator) StartReply(commentID string) error {
	c.mu.Lock()
	tree, _ := c.cache.Get(c.target.ID)
	ci := indexComment(tree, commentID)
	if ci < 0 {
		c.mu.Unlock()
		return ErrNotFound
	}
	name := tree[ci].Author.Name
	c.replyTo = &ReplyTarget{CommentID: commentID, AuthorName: name}
	if name != "" {
		c.input = mention(name)
	}
	c.mu.Unlock()
	c.changed()
	return nil
}

// CancelReply clears the reply target and drops an untouched mention.
func (c *Coordinator) CancelReply() {
	c.mu.Lock()
	if c.replyTo != nil && c.input == mention(c.replyTo.AuthorName) {
		c.input = ""
	}
	c.replyTo = nil
	c.mu.Unlock()
	c.changed()
}

func mention(name string) string {
	return "@" + strings.TrimSpace(name) + " "
}

// Close tears the coordinator down: pending like timers are stopped and
// results of in-flight requests are discarded.
func (c *Coordinator) Close() {
	c.guard.Teardown()
}

func (c *Coordinator) stopTimers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, p := range c.pending {
		if p.timer != nil {
			p.timer.Stop()
			p.timer = nil
		}
		if !p.inflight {
			delete(c.pending, key)
		}
	}
}

func (c *Coordinator) changed() {
	if c.opts.OnChange == nil || !c.guard.Alive() {
		return
	}
	c.opts.OnChange(c.State())
}

func (c *Coordinator) toast(key i18n.Key, sev notify.Severity) {
	if !c.guard.Alive() {
		return
	}
	c.opts.Notifier.Notify(notify.Toast{Message: i18n.T(c.opts.Locale, key), Severity: sev})
}

func (c *Coordinator) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.base, c.opts.RequestTimeout)
}

func indexComment(tree []model.Comment, id string) int {
	for i := range tree {
		if tree[i].ID == id {
			return i
		}
	}
	return -1
}

func indexReply(replies []model.Reply, id string) int {
	for i := range replies {
		if replies[i].ID == id {
			return i
		}
	}
	return -1
}
