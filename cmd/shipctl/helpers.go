package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/config"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/kv"
)

// loadConfig reads the client config or fatals.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// dataDir returns the data directory, creating it if needed.
func dataDir(cfg *config.Config) string {
	dir := cfg.DataPath()
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return dir
}

// eventLogPath returns the path to events.jsonl.
func eventLogPath(cfg *config.Config) string {
	return filepath.Join(dataDir(cfg), "logs", "events.jsonl")
}

// openKV opens the key-value database or fatals.
func openKV(cfg *config.Config) *kv.SQLite {
	st, err := kv.Open(filepath.Join(dataDir(cfg), "shipfeed.db"))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	return st
}
