// Package ui provides the Bubble Tea TUI for shipfeed.
package ui

import (
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/notify"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/publish"
)

// FeedUpdated is sent whenever the aggregator's working list changes.
type FeedUpdated struct {
	Items []model.FeedItem
}

// RefreshDone is sent when a feed refresh finishes.
type RefreshDone struct {
	Err error
}

// CommentsUpdated is sent when a cached comment tree changes.
type CommentsUpdated struct {
	PostID string
}

// CommentsLoaded is sent when the comment sheet's initial load finishes.
type CommentsLoaded struct {
	PostID string
	Err    error
}

// SheetChanged is sent when the open coordinator's input, reply target or
// submitting gate changes.
type SheetChanged struct {
	PostID string
}

// SubmitDone is sent when a comment or reply submission settles.
type SubmitDone struct {
	PostID string
	Err    error
}

// ActionDone is sent when a fire-and-forget mutation settles.
type ActionDone struct {
	Action string
	ID     string
	Err    error
}

// ToastMsg carries a toast to display.
type ToastMsg struct {
	Toast notify.Toast
}

// ConfirmMsg opens the confirmation modal.
type ConfirmMsg struct {
	Prompt notify.Prompt
}

// PublishChanged is sent on every publishing state transition.
type PublishChanged struct {
	Status publish.Status
}

// toastExpired removes the toast with seq.
type toastExpired struct {
	seq int
}
