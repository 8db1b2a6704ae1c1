package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RossFW/atlas-conquest/internal/analytics/view"
	"github.com/RossFW/atlas-conquest/internal/api"
	"github.com/RossFW/atlas-conquest/internal/cache"
	"github.com/RossFW/atlas-conquest/internal/charts"
	"github.com/RossFW/atlas-conquest/internal/config"
	"github.com/RossFW/atlas-conquest/internal/dataset"
	"github.com/RossFW/atlas-conquest/internal/storage"
)

func runServeCommand(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var g globalFlags
	g.register(fs)
	port := fs.Int("port", 0, "API server port (overrides config)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := g.load()
	if *port > 0 {
		cfg.Server.Port = *port
	}

	fmt.Println("Atlas Conquest Analytics - API Server")
	fmt.Println("=====================================")
	fmt.Println()
	fmt.Printf("Data directory: %s\n", cfg.Data.Dir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, loader := loadStore(ctx, cfg)
	engine := view.NewEngine(cfg.Engine())

	deps := api.Deps{Engine: engine, Store: store}

	if db := openStorage(cfg); db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("[Storage] Error closing database: %v", err)
			}
		}()
		deps.Saved = db.SavedViews()
		fmt.Printf("Saved views:    %s\n", cfg.Storage.Path)
	}

	if viewCache := openCache(ctx, cfg); viewCache != nil {
		defer func() {
			if err := viewCache.Close(); err != nil {
				log.Printf("[Cache] Error closing cache: %v", err)
			}
		}()
		deps.Cache = viewCache
		fmt.Println("View cache:     redis")
	}

	if cfg.Data.Watch {
		startWatcher(ctx, cfg, loader, store)
	}

	searchDebounce, _ := cfg.GetSearchDebounce()
	server := api.NewServer(&api.Config{
		Port:           cfg.Server.Port,
		CORSOrigins:    cfg.Server.CORSOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		SearchDebounce: searchDebounce,
		Charts:         chartConfig(cfg),
	}, deps)

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Println()
	fmt.Printf("API server running at http://localhost:%d\n", cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	<-ctx.Done()

	fmt.Println()
	fmt.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("API server stopped.")
}

// openCache connects to Redis when configured. A cache that cannot be
// reached is logged and skipped; views still render without it.
func openCache(ctx context.Context, cfg *config.Config) *cache.RedisCache {
	if cfg.Cache.RedisURL == "" {
		return nil
	}
	ttl, _ := cfg.GetCacheTTL()
	c, err := cache.Open(ctx, cfg.Cache.RedisURL, ttl)
	if err != nil {
		log.Printf("[Cache] Redis unavailable, serving without cache: %v", err)
		return nil
	}
	return c
}

func startWatcher(ctx context.Context, cfg *config.Config, loader *dataset.Loader, store *dataset.Store) {
	debounce, _ := cfg.GetReloadDebounce()
	poll, _ := cfg.GetPollInterval()
	watcher := dataset.NewWatcher(cfg.Data.Dir, loader, store, dataset.WatcherConfig{
		Debounce:     debounce,
		PollInterval: poll,
		Logger:       slog.Default().With("component", "watcher"),
	})

	go func() {
		log.Printf("[Watcher] Watching %s for changes", cfg.Data.Dir)
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[Watcher] Stopped: %v", err)
		}
	}()
}

// chartConfig applies the configured size and theme to the chart defaults.
func chartConfig(cfg *config.Config) charts.ChartConfig {
	cc := charts.DefaultChartConfig()
	if cfg.Charts.Width != "" {
		cc.Width = cfg.Charts.Width
	}
	if cfg.Charts.Height != "" {
		cc.Height = cfg.Charts.Height
	}
	if cfg.Charts.Theme != "" {
		cc.Theme = cfg.Charts.Theme
	}
	return cc
}

// savedRepo opens the saved view repository or exits when storage is disabled.
func savedRepo(cfg *config.Config) (storage.SavedViewRepository, func()) {
	db := openStorage(cfg)
	if db == nil {
		log.Fatalf("Saved views are disabled: set [storage] path in the config")
	}
	return db.SavedViews(), func() {
		if err := db.Close(); err != nil {
			log.Printf("[Storage] Error closing database: %v", err)
		}
	}
}
