package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"refetch/internal/config"
	"refetch/internal/controller"
	"refetch/internal/logging"
	"refetch/internal/notify"
	"refetch/internal/provider"
	mongoprov "refetch/internal/provider/mongo"
	"refetch/internal/querycache"
	"refetch/internal/records"
	"refetch/internal/rest"
	"refetch/pkg/model"
)

func main() {
	configPath := flag.String("config", "config/config.yml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if err := logging.Initialize(cfg.Logging); err != nil {
		slog.Error("Failed to initialize logging", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := logging.Shutdown(); err != nil {
			slog.Error("Failed to shut down logging", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher, cleanup, err := buildProvider(ctx, cfg.Provider)
	if err != nil {
		slog.Error("Failed to initialize provider", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	notifier, closeNotifier, err := buildNotifier(cfg.Notifier)
	if err != nil {
		slog.Error("Failed to initialize notifier", "error", err)
		os.Exit(1)
	}
	defer closeNotifier()

	recs := records.NewStore()
	store := querycache.NewStore(fetcher, recs, cfg.Cache.Config)

	handler := rest.NewHandler(store, recs, controller.NewSelectionStore(), notifier,
		cfg.Cache.Debounce, cfg.Cache.RetryCount)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", cfg.Server.Addr, "provider", cfg.Provider.Kind)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}

// buildProvider constructs the configured page fetch backend. The memory
// backend ships with demo data so the list endpoints respond out of the
// box.
func buildProvider(ctx context.Context, cfg config.ProviderConfig) (provider.PageFetcher, func(), error) {
	switch cfg.Kind {
	case "mongo":
		p, err := mongoprov.New(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := p.Close(context.Background()); err != nil {
				slog.Error("Failed to close mongodb connection", "error", err)
			}
		}
		return p, cleanup, nil

	default:
		p := provider.NewMemoryProvider()
		seedDemoData(p)
		return p, func() {}, nil
	}
}

func buildNotifier(cfg config.NotifierConfig) (notify.Notifier, func(), error) {
	switch cfg.Kind {
	case "nats":
		n, err := notify.NewNatsNotifier(cfg.Nats)
		if err != nil {
			return nil, nil, err
		}
		return n, n.Close, nil

	default:
		return notify.LogNotifier{}, func() {}, nil
	}
}

func seedDemoData(p *provider.MemoryProvider) {
	p.Seed("comments",
		model.Record{"id": "c1", "post_id": "p1", "body": "Looks great"},
		model.Record{"id": "c2", "post_id": "p1", "body": "Needs a rebase"},
		model.Record{"id": "c3", "post_id": "p1", "body": "Shipped"},
		model.Record{"id": "c4", "post_id": "p2", "body": "Unrelated thread"},
	)
	p.Seed("tags",
		model.Record{"id": "t1", "post_id": "p1", "name": "release"},
		model.Record{"id": "t2", "post_id": "p2", "name": "draft"},
	)
	slog.Info("Seeded demo data", "resources", []string{"comments", "tags"})
}
