package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/careersync/internal/api"
	"github.com/dgallion1/careersync/internal/catalog"
	"github.com/dgallion1/careersync/internal/config"
	"github.com/dgallion1/careersync/internal/logger"
	"github.com/dgallion1/careersync/internal/pipeline"
	"github.com/dgallion1/careersync/internal/store"
	"github.com/dgallion1/careersync/internal/watcher"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Config{
		Writer: os.Stdout,
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	})

	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	fs := &store.FS{Dir: cfg.OutputDir}
	orch := pipeline.NewOrchestrator(cfg, fs, log)
	orch.Start(ctx)

	// Optional directory watcher.
	var w *watcher.Watcher
	if cfg.WatchDir != "" {
		var err error
		w, err = watcher.New(watcher.Config{
			Dir:          cfg.WatchDir,
			DocumentPath: cfg.DocumentPath,
			Debounce:     cfg.WatchDebounce,
			CodePolicy:   catalog.CodePolicy(cfg.CodePolicy),
		}, orch, log)
		if err != nil {
			log.Error("failed to create watcher", "error", err)
			os.Exit(1)
		}
		if err := w.Start(ctx); err != nil {
			log.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
	}

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		if w != nil {
			w.Stop()
		}
		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting careersync", "port", cfg.Port, "watch_dir", cfg.WatchDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
