package main

import (
	"bufio"
	"strings"
	"testing"
	"time"
)

const sampleLog = `{"t":"2026-01-02T10:00:00Z","level":"info","kind":"feed.fetch_complete","comp":"feed","count":12,"dur_ms":42.5}
not json
{"t":"2026-01-02T10:00:01Z","level":"warn","kind":"like.error","comp":"interact","post_id":"p1","item_id":"c1","err":"boom"}

{"t":"2026-01-02T10:00:02Z","level":"debug","kind":"like.flush","comp":"interact","post_id":"p2"}
{"t":"2026-01-02T10:00:03Z","level":"error","kind":"comment.error","comp":"interact","post_id":"p1"}`

func readSample(n int, f eventFilter) []parsedLine {
	return readTailLines(bufio.NewReader(strings.NewReader(sampleLog)), n, f.match)
}

func TestReadTailLinesKeepsLastN(t *testing.T) {
	lines := readSample(2, eventFilter{})
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].ev.Kind != "like.flush" || lines[1].ev.Kind != "comment.error" {
		t.Errorf("kinds = %q, %q", lines[0].ev.Kind, lines[1].ev.Kind)
	}
}

func TestReadTailLinesSkipsGarbage(t *testing.T) {
	if got := len(readSample(50, eventFilter{})); got != 4 {
		t.Errorf("got %d lines, want 4", got)
	}
	if got := readSample(0, eventFilter{}); got != nil {
		t.Errorf("n=0 should return nil, got %d", len(got))
	}
}

func TestEventFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter eventFilter
		want   int
	}{
		{"kind prefix", eventFilter{kind: "like"}, 2},
		{"min level", eventFilter{level: "warn"}, 2},
		{"component", eventFilter{comp: "feed"}, 1},
		{"post", eventFilter{post: "p1"}, 2},
		{"combined", eventFilter{post: "p1", kind: "comment"}, 1},
		{"session", eventFilter{session: "nope"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(readSample(50, tt.filter)); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	ev := eventRecord{
		Time:   time.Date(2026, 1, 2, 10, 0, 1, 0, time.UTC),
		Level:  "warn",
		Kind:   "like.error",
		Comp:   "interact",
		PostID: "p1",
		ItemID: "c1",
		DurMs:  3.5,
		Err:    "boom",
		Msg:    "rolled back",
	}
	line := formatEvent(ev)
	for _, want := range []string{"10:00:01.000", "WARN", "like.error", "- rolled back", "(3.5ms)", "post=p1", "item=c1", "err=boom"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if got := formatEvent(eventRecord{}); !strings.Contains(got, "?") {
		t.Errorf("empty level should render '?': %q", got)
	}
}

func TestDurPrecision(t *testing.T) {
	if durPrecision(150) != 0 || durPrecision(5) != 1 || durPrecision(0.5) != 2 {
		t.Error("unexpected precision")
	}
}
