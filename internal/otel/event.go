// Package otel records structured engine events as JSONL.
//
// Events are written asynchronously by a single drain goroutine so that the
// feed and mutation paths never block on disk.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind is "<subsystem>.<action>".
type EventKind string

const (
	KindFeedFetchStart    EventKind = "feed.fetch_start"
	KindFeedFetchComplete EventKind = "feed.fetch_complete"
	KindFeedFetchError    EventKind = "feed.fetch_error"
	KindFeedNewItem       EventKind = "feed.new_item"
	KindFeedDismiss       EventKind = "feed.dismiss"
	KindFeedDelete        EventKind = "feed.delete"

	KindLikeFlush   EventKind = "like.flush"
	KindLikeSkipped EventKind = "like.skipped"
	KindLikeError   EventKind = "like.error"

	KindCommentSubmit   EventKind = "comment.submit"
	KindCommentError    EventKind = "comment.error"
	KindCommentDelete   EventKind = "comment.delete"
	KindCommentRollback EventKind = "comment.rollback"

	KindPublishState EventKind = "publish.state"
	KindStale        EventKind = "guard.stale"

	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
)

// Event is one JSONL line. Only Kind and Time are always present.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "feed", "interact", "api", "main"
	SessionID string         `json:"session_id,omitempty"`
	PostID    string         `json:"post_id,omitempty"`
	ItemID    string         `json:"item_id,omitempty"`
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON converts Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := struct {
		alias
	}{alias: alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
