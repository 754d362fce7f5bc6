package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/logging"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/notify"
)

// Sender delivers messages to a running program. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge turns engine callbacks into program messages. Engine callbacks may
// run under component locks, so every send is asynchronous. Messages sent
// before Attach are dropped.
type Bridge struct {
	mu     sync.Mutex
	sender Sender
}

// Attach sets the program that receives messages.
func (b *Bridge) Attach(s Sender) {
	b.mu.Lock()
	b.sender = s
	b.mu.Unlock()
}

// Send delivers msg without blocking the caller.
func (b *Bridge) Send(msg tea.Msg) {
	b.mu.Lock()
	s := b.sender
	b.mu.Unlock()
	if s == nil {
		logging.Debug("ui: message dropped before attach", "type", msgName(msg))
		return
	}
	go s.Send(msg)
}

// Notify implements notify.Notifier.
func (b *Bridge) Notify(t notify.Toast) {
	b.Send(ToastMsg{Toast: t})
}

// Confirm implements notify.Confirmer by opening the modal.
func (b *Bridge) Confirm(p notify.Prompt) {
	b.Send(ConfirmMsg{Prompt: p})
}

func msgName(msg tea.Msg) string {
	switch msg.(type) {
	case ToastMsg:
		return "toast"
	case ConfirmMsg:
		return "confirm"
	case FeedUpdated:
		return "feed"
	case CommentsUpdated:
		return "comments"
	case PublishChanged:
		return "publish"
	}
	return "other"
}
