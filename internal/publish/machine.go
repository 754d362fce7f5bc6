// Package publish tracks the status of an in-flight post/ad creation so the
// feed can flag the new item and show a status indicator.
package publish

import (
	"sync"
	"time"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/otel"
)

// Status is the machine state.
type Status int

const (
	Idle Status = iota
	Publishing
	Success
)

func (s Status) String() string {
	switch s {
	case Publishing:
		return "publishing"
	case Success:
		return "success"
	}
	return "idle"
}

// Machine is the idle → publishing → success → idle state machine.
// Callbacks run outside the lock on the calling goroutine, or on the timer
// goroutine for the indicator timeout. Safe for concurrent use.
type Machine struct {
	mu        sync.Mutex
	status    Status
	kind      string
	indicator time.Duration
	timer     *time.Timer

	onComplete func(kind string)
	onChange   func(Status)
	events     *otel.Logger
}

// NewMachine returns an idle machine. When indicator is positive, Succeed
// arms a timer that calls Complete after it elapses. onComplete receives the
// kind that was being published and may be nil.
func NewMachine(indicator time.Duration, onComplete func(kind string)) *Machine {
	return &Machine{indicator: indicator, onComplete: onComplete}
}

// SetOnChange registers fn to observe every transition.
func (m *Machine) SetOnChange(fn func(Status)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// SetEvents attaches an event logger.
func (m *Machine) SetEvents(l *otel.Logger) {
	m.mu.Lock()
	m.events = l
	m.mu.Unlock()
}

// Report moves idle → publishing for a non-empty kind. It reports whether
// the transition happened.
func (m *Machine) Report(kind string) bool {
	if kind == "" {
		return false
	}
	m.mu.Lock()
	if m.status != Idle {
		m.mu.Unlock()
		return false
	}
	m.status = Publishing
	m.kind = kind
	notify := m.transitionLocked()
	m.mu.Unlock()

	notify()
	return true
}

// Succeed moves publishing → success.
func (m *Machine) Succeed() bool {
	m.mu.Lock()
	if m.status != Publishing {
		m.mu.Unlock()
		return false
	}
	m.status = Success
	if m.indicator > 0 {
		m.stopTimerLocked()
		m.timer = time.AfterFunc(m.indicator, func() { m.Complete() })
	}
	notify := m.transitionLocked()
	m.mu.Unlock()

	notify()
	return true
}

// Complete moves success → idle and fires the completion callback.
func (m *Machine) Complete() bool {
	return m.toIdle(Success)
}

// Fail force-resets publishing → idle and still fires the completion
// callback, so the caller's publish flag is never left set.
func (m *Machine) Fail() bool {
	return m.toIdle(Publishing)
}

func (m *Machine) toIdle(from Status) bool {
	m.mu.Lock()
	if m.status != from {
		m.mu.Unlock()
		return false
	}
	kind := m.kind
	m.status = Idle
	m.kind = ""
	m.stopTimerLocked()
	notify := m.transitionLocked()
	onComplete := m.onComplete
	m.mu.Unlock()

	notify()
	if onComplete != nil {
		onComplete(kind)
	}
	return true
}

// Status returns the current state.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Publishing reports whether a publish is in flight.
func (m *Machine) Publishing() bool {
	return m.Status() == Publishing
}

// Kind returns the kind being published, or "" when idle.
func (m *Machine) Kind() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kind
}

// Stop cancels a pending indicator timeout without transitioning.
func (m *Machine) Stop() {
	m.mu.Lock()
	m.stopTimerLocked()
	m.mu.Unlock()
}

func (m *Machine) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// transitionLocked logs the new state and returns the observer call to make
// once the lock is released.
func (m *Machine) transitionLocked() func() {
	status := m.status
	m.events.Emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindPublishState,
		Comp:  "publish",
		Msg:   status.String(),
	})
	fn := m.onChange
	return func() {
		if fn != nil {
			fn(status)
		}
	}
}
