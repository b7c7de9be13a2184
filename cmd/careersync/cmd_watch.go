package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dgallion1/careersync/internal/catalog"
	"github.com/dgallion1/careersync/internal/pipeline"
	"github.com/dgallion1/careersync/internal/store"
	"github.com/dgallion1/careersync/internal/watcher"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var dir, document string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild sections whenever a listing lands in a directory",
		Long: `Watches a directory for listings whose names contain pregrado or
postgrado and writes a dated copy of the document for each one. Runs until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if dir != "" {
				cfg.WatchDir = dir
			}
			if document != "" {
				cfg.DocumentPath = document
			}
			if err := cfg.ValidateWatch(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			orch := pipeline.NewOrchestrator(cfg, &store.FS{Dir: cfg.OutputDir}, a.log)
			orch.Start(ctx)
			defer orch.Stop()

			w, err := watcher.New(watcher.Config{
				Dir:          cfg.WatchDir,
				DocumentPath: cfg.DocumentPath,
				Debounce:     cfg.WatchDebounce,
				CodePolicy:   catalog.CodePolicy(cfg.CodePolicy),
			}, orch, a.log)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			<-ctx.Done()
			a.log.Info("shutting down...")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory to watch (default: WATCH_DIR)")
	cmd.Flags().StringVar(&document, "document", "", "careers JSON document to update (default: DOCUMENT_PATH)")
	return cmd
}
