// Command shipfeed is the terminal client for the shipping feed: posts,
// shipment ads and empty-truck ads with comments and likes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/api"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/auth"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/comments"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/config"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/dismissed"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/feed"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/i18n"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/interact"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/kv"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/logging"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/otel"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/publish"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/ui"
)

func main() {
	configPath := flag.String("config", config.ConfigPath(), "Path to config.json")
	locale := flag.String("locale", "", "UI locale: ar or en (overrides config)")
	published := flag.String("published", "", "Content kind just published; the first refresh flags the new item")
	flag.Parse()

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	if *locale != "" {
		cfg.UI.Locale = *locale
	}
	loc := i18n.ParseLocale(cfg.UI.Locale)

	dataDir := cfg.DataPath()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fatal("Failed to create data directory: %v", err)
	}
	logDir := filepath.Join(dataDir, "logs")
	if err := logging.Init(logDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	events := openEvents(logDir)
	defer events.Close()
	events.Info(otel.KindStartup, "main", "shipfeed starting")

	store, err := kv.Open(filepath.Join(dataDir, "shipfeed.db"))
	if err != nil {
		fatal("Failed to open database: %v", err)
	}
	defer store.Close()

	session := auth.NewSession(store)
	if _, err := session.Token(); err != nil {
		fatal("Not signed in. Run: shipctl login <token>")
	}

	hidden, err := dismissed.Open(store)
	if err != nil {
		fatal("Failed to load dismissed posts: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := api.NewClient(cfg.API.BaseURL, session, cfg.APITimeout(), cfg.API.RequestsPerSecond)
	bridge := &ui.Bridge{}

	machine := publish.NewMachine(cfg.PublishIndicator(), func(kind string) {
		logging.Info("Publishing finished", "kind", kind)
	})
	machine.SetEvents(events)
	machine.SetOnChange(func(s publish.Status) { bridge.Send(ui.PublishChanged{Status: s}) })
	defer machine.Stop()

	aggregator := feed.NewAggregator(client, feed.Options{
		NewItemTTL: cfg.NewItemTTL(),
		Locale:     loc,
		Dismissed:  hidden,
		Publish:    machine,
		Mutator:    client,
		Events:     events,
	})
	defer aggregator.Close()
	aggregator.Subscribe(func(items []model.FeedItem) { bridge.Send(ui.FeedUpdated{Items: items}) })

	cache := comments.NewCache()
	cache.Subscribe(func(postID string, _ []model.Comment) { bridge.Send(ui.CommentsUpdated{PostID: postID}) })
	loader := comments.NewLoader(cache, client, session.ViewerID)

	openSheet := func(target model.Target) (ui.Sheet, error) {
		c, err := interact.New(ctx, target, cache, client, session, interact.Options{
			QuietPeriod:     cfg.LikeDebounce(),
			RequestTimeout:  cfg.RequestTimeout(),
			Locale:          loc,
			Notifier:        bridge,
			Confirmer:       bridge,
			Events:          events,
			OnParentUpdated: aggregator.ApplyRecord,
			OnChange: func(interact.State) {
				bridge.Send(ui.SheetChanged{PostID: target.ID})
			},
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	app := ui.NewApp(ui.Options{
		Feed:          aggregator,
		Loader:        loader,
		OpenSheet:     openSheet,
		ViewerID:      session.ViewerID,
		Publisher:     machine,
		PublishedKind: *published,
		Locale:        loc,
		Context:       ctx,
	})

	program := tea.NewProgram(app, tea.WithAltScreen())
	bridge.Attach(program)

	logging.Info("Starting UI", "api", cfg.API.BaseURL, "locale", loc, "dismissed", hidden.Len())
	if _, err := program.Run(); err != nil {
		logging.Error("Application error", "error", err)
		events.Error(otel.KindError, "main", err)
	}

	events.Info(otel.KindShutdown, "main", "shipfeed exiting")
	logging.Info("shipfeed exiting normally")
}

// openEvents opens the JSONL event log, falling back to a null logger.
func openEvents(dir string) *otel.Logger {
	f, err := os.OpenFile(filepath.Join(dir, "events.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.Warn("Event log unavailable", "error", err)
		return otel.NewNullLogger()
	}
	return otel.NewLogger(f)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
