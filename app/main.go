package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/their-side/app/api"
	"github.com/lysyi3m/their-side/app/cfg"
	"github.com/lysyi3m/their-side/app/database"
	"github.com/lysyi3m/their-side/app/feed"
	"github.com/lysyi3m/their-side/app/page"
	"github.com/lysyi3m/their-side/app/pages"
	"github.com/lysyi3m/their-side/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting Their Side server", "version", appCfg.Version, "feed", appCfg.FeedURL)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open page store", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Page store ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	httpClient := &http.Client{Timeout: appCfg.FetchTimeout}

	source := feed.NewHTTPSource(appCfg.FeedURL, httpClient, appCfg.UserAgent, appCfg.FetchTimeout, appCfg.FetchRate)
	projector := feed.NewProjector(source, feed.NewParser())

	renderer, err := page.NewRenderer(appCfg.Site, appCfg.BaseUrl)
	if err != nil {
		slog.Error("Failed to load page templates", "error", err)
		os.Exit(1)
	}

	pageRepo := database.NewPageRepository(db)
	builder := pages.NewBuilder(projector, renderer, pageRepo, appCfg.Revalidate)
	if appCfg.ExtractContent {
		builder.WithContentExtractor(feed.NewContentExtractor(httpClient, appCfg.UserAgent))
		slog.Info("Show notes extraction enabled")
	}

	scheduler := tasks.NewScheduler(builder, appCfg.WorkerCount, appCfg.PrerenderInterval)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(builder, renderer, pageRepo, scheduler, appCfg.FeedURL, appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening",
			"port", appCfg.Port,
			"revalidate", appCfg.Revalidate,
			"workers", appCfg.WorkerCount,
			"revalidate_api", appCfg.APIAccessKey != "")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler and database are closed via defer
	slog.Info("Their Side server shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
