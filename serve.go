package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/bwan3150/resourcer/internal/catalog"
	"github.com/bwan3150/resourcer/internal/config"
	"github.com/bwan3150/resourcer/internal/httpapi"
	"github.com/bwan3150/resourcer/internal/indexer"
	"github.com/bwan3150/resourcer/internal/query"
	"github.com/bwan3150/resourcer/internal/scanner"
	"github.com/bwan3150/resourcer/internal/tagstore"
	"github.com/bwan3150/resourcer/internal/transfer"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the indexer HTTP server",
		Long: `Start the resourcer daemon: opens the catalog database, wires the
scanner, indexer and HTTP API, and listens for requests until interrupted.

Only one serve process may run against a given data directory at a time —
the PID file is flock'd to enforce this.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	logger := cc.Logger

	if err := os.MkdirAll(cc.Cfg.Server.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	pidPath := config.DefaultPIDPath(cc.Cfg.Server.DataDir)

	cleanup, err := writePIDFile(pidPath)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := shutdownContext(context.Background(), logger)

	dbPath := config.DefaultDatabasePath(cc.Cfg.Server.DataDir)

	store, err := catalog.Open(ctx, dbPath, logger)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer store.Close()

	sc := scanner.New(store, logger)
	qe := query.New(store)
	coord := indexer.New(store, sc, qe, logger)
	tags := tagstore.New(store)
	recorder := transfer.NewRecorder(store, coord)

	srv := httpapi.New(store, coord, qe, tags, recorder, logger)

	if cc.Cfg.Scan.WatchFilesystem {
		if err := startFilesystemWatchers(ctx, store, coord, logger); err != nil {
			return fmt.Errorf("starting filesystem watchers: %w", err)
		}
	}

	httpServer := &http.Server{
		Addr:    cc.Cfg.Server.ListenAddr,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("serve: listening", "addr", cc.Cfg.Server.ListenAddr, "data_dir", cc.Cfg.Server.DataDir)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}

		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("serve: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpClientTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	return <-errCh
}

// startFilesystemWatchers spawns one fsnotify-backed watcher goroutine per
// registered source folder, each running until ctx is cancelled. A watch
// that fails to start (missing directory, inotify limit) is logged, not
// fatal — the stale-on-read polling path still covers that folder.
func startFilesystemWatchers(ctx context.Context, store *catalog.Store, coord *indexer.Coordinator, logger *slog.Logger) error {
	sources, err := store.ListSourceFolders(ctx)
	if err != nil {
		return err
	}

	w := indexer.NewWatcher(coord, logger)

	for _, source := range sources {
		source := source

		go func() {
			if err := w.Watch(ctx, source.Path); err != nil {
				logger.Warn("serve: filesystem watch failed", "source_folder", source.Path, "error", err)
			}
		}()
	}

	return nil
}
