package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopBeforeInit(t *testing.T) {
	Logger = nil
	Info("dropped")
	Debug("dropped")
	Warn("dropped")
	Error("dropped")
	Close()
}

func TestInitWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, log.InfoLevel)
	defer func() { Logger = nil }()

	Debug("hidden debug")
	Info("feed refreshed", "items", 12)
	Warn("like rolled back", "post", "p1")

	out := buf.String()
	if strings.Contains(out, "hidden debug") {
		t.Errorf("debug line written at info level: %q", out)
	}
	for _, want := range []string{"feed refreshed", "items=12", "like rolled back", "post=p1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestInitWritesDatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	if err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Info("hello")
	Close()
	Logger = nil

	name := "shipfeed-" + time.Now().Format("2006-01-02") + ".log"
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, want := range []string{"shipfeed started", "hello", "shipfeed shutting down"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log missing %q", want)
		}
	}
}
