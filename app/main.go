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

	"github.com/lysyi3m/pitch-post/app/api"
	"github.com/lysyi3m/pitch-post/app/cfg"
	"github.com/lysyi3m/pitch-post/app/database"
	"github.com/lysyi3m/pitch-post/app/extract"
	"github.com/lysyi3m/pitch-post/app/fetch"
	"github.com/lysyi3m/pitch-post/app/job"
	"github.com/lysyi3m/pitch-post/app/logging"
	"github.com/lysyi3m/pitch-post/app/news"
	"github.com/lysyi3m/pitch-post/app/publish"
	"github.com/lysyi3m/pitch-post/app/rewrite"
	"github.com/lysyi3m/pitch-post/app/tasks"
)

// A run handles at most a handful of articles, each with a few outbound calls.
const runTimeout = 30 * time.Minute

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	logCloser, err := logging.Setup(logging.Options{
		Debug:  appCfg.Debug,
		Format: appCfg.LogFormat,
		File:   appCfg.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	slog.Info("Starting Pitch Post", "version", appCfg.Version)

	slog.Info("Connecting to database", "driver", appCfg.DBDriver)
	db, err := database.Open(appCfg.DBDriver, appCfg.DBDSN)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "schema_version", version, "dirty", dirty)

	historyRepo := database.NewHistoryRepository(db)
	settingsRepo := database.NewSettingsRepository(db)
	runRepo := database.NewRunRepository(db)
	eventRepo := database.NewEventRepository(db)

	configCache := news.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load source configurations", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.HTTPTimeout) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	fetcher := fetch.NewClient(httpClient, appCfg.UserAgent)

	sources, err := news.NewSources(configCache.GetEnabledConfigs(), fetcher)
	if err != nil {
		slog.Error("Failed to create news sources", "error", err)
		os.Exit(1)
	}
	slog.Info("News sources loaded", "enabled", len(sources), "total", configCache.GetConfigCount())

	rewriteClient, err := rewrite.NewClient(appCfg.Rewriter, appCfg.RewriterBaseURL, appCfg.RewriterModel, httpClient)
	if err != nil {
		slog.Error("Failed to create rewriter", "error", err)
		os.Exit(1)
	}

	engine := job.NewEngine(job.Deps{
		Collector: news.NewCollector(sources),
		Extractor: extract.NewExtractor(fetcher, time.Duration(appCfg.HTTPTimeout)*time.Second),
		Rewriter:  rewrite.NewRotator(rewriteClient, rewrite.Prompt{Language: appCfg.TargetLanguage}),
		Publishers: publish.NewResolver(settingsRepo, publish.Options{
			Kind:                appCfg.Publisher,
			FacebookPageID:      appCfg.FacebookPageID,
			FacebookAccessToken: appCfg.FacebookAccessToken,
			GraphAPIURL:         appCfg.GraphAPIURL,
			TelegramBotToken:    appCfg.TelegramBotToken,
			TelegramChatID:      appCfg.TelegramChatID,
			HTTPClient:          httpClient,
		}),
		Settings:     settingsRepo,
		History:      historyRepo,
		Runs:         runRepo,
		Events:       eventRepo,
		FallbackKeys: appCfg.RewriterKeys,
		MaxPosts:     appCfg.MaxPostsPerRun,
	})

	slog.Info("Starting scheduler", "cron", tasks.CronSpec(appCfg.ScheduleHours), "timezone", time.Local.String(), "run_on_start", appCfg.RunOnStart)
	scheduler, err := tasks.NewScheduler(engine, eventRepo, tasks.Options{
		Hours:          appCfg.ScheduleHours,
		Location:       time.Local,
		RunOnStart:     appCfg.RunOnStart,
		RunTimeout:     runTimeout,
		EventRetention: time.Duration(appCfg.EventRetentionDays) * 24 * time.Hour,
	})
	if err != nil {
		slog.Error("Failed to create scheduler", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(historyRepo, settingsRepo, runRepo, eventRepo, configCache, scheduler, appCfg.Version)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Pitch Post started")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer; an in-flight run finishes its bookkeeping.
	slog.Info("Pitch Post shutdown complete")
}
