// Package notify defines the ports the engine uses to talk to the user:
// toasts and confirmation prompts.
package notify

import "sync"

// Severity of a toast.
type Severity int

const (
	Info Severity = iota
	Success
	Error
)

func (s Severity) String() string {
	switch s {
	case Success:
		return "success"
	case Error:
		return "error"
	}
	return "info"
}

// Toast is a short transient message.
type Toast struct {
	Message  string
	Severity Severity
}

// Notifier shows toasts.
type Notifier interface {
	Notify(Toast)
}

// Prompt asks the user to confirm a destructive action. OnConfirm runs only
// if the user accepts.
type Prompt struct {
	Title     string
	Message   string
	OnConfirm func()
}

// Confirmer presents prompts.
type Confirmer interface {
	Confirm(Prompt)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Toast)

func (f NotifierFunc) Notify(t Toast) { f(t) }

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(Prompt)

func (f ConfirmerFunc) Confirm(p Prompt) { f(p) }

// Discard drops every toast.
var Discard Notifier = NotifierFunc(func(Toast) {})

// AutoConfirm accepts every prompt immediately.
var AutoConfirm Confirmer = ConfirmerFunc(func(p Prompt) {
	if p.OnConfirm != nil {
		p.OnConfirm()
	}
})

// Recorder keeps every toast it receives. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

// Toasts returns a copy of the recorded toasts.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Count returns how many toasts of severity sev were recorded.
func (r *Recorder) Count(sev Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.toasts {
		if t.Severity == sev {
			n++
		}
	}
	return n
}
