package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/api"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/auth"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/dismissed"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/feed"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/i18n"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
)

func runFeed() {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	limit := fs.Int("n", 30, "Number of merged items to print")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	st := openKV(cfg)
	defer st.Close()

	session := auth.NewSession(st)
	client := api.NewClient(cfg.API.BaseURL, session, cfg.APITimeout(), cfg.API.RequestsPerSecond)
	hidden, err := dismissed.Open(st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.APITimeout())
	defer cancel()

	// --- Per-collection statistics ---

	var results []model.Collection
	for _, typ := range model.ItemTypes {
		start := time.Now()
		c, err := client.Fetch(ctx, typ)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: fetch %s: %v\n", typ, err)
			os.Exit(1)
		}
		_, skipped := model.NormalizeFeedItems(c.Records, typ)
		fmt.Printf("%-14s %4d records  %3d skipped  %4d suggestions  (%s)\n",
			typ, len(c.Records), skipped, len(c.Suggestions), time.Since(start).Round(time.Millisecond))
		results = append(results, c)
	}

	items := feed.Merge(results, hidden.Contains)
	fmt.Printf("\nMerged:        %d (dismissed: %d)\n\n", len(items), hidden.Len())

	loc := i18n.ParseLocale(cfg.UI.Locale)
	now := time.Now()
	for i, item := range items {
		if i >= *limit {
			break
		}
		fmt.Printf("  %-12s %-24s %-14s %s\n", item.Type, item.ID, i18n.RelTime(item.CreatedAt, now, loc), item.Author.Name)
	}
}

func runDismissed() {
	cfg := loadConfig()
	st := openKV(cfg)
	defer st.Close()

	hidden, err := dismissed.Open(st)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Dismissed posts (%d):\n", hidden.Len())
	for _, id := range hidden.IDs() {
		fmt.Printf("  %s\n", id)
	}
}
