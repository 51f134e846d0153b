package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/pdfdesk/internal/api"
	"github.com/dgallion1/pdfdesk/internal/blobstore"
	"github.com/dgallion1/pdfdesk/internal/config"
	"github.com/dgallion1/pdfdesk/internal/layout"
	"github.com/dgallion1/pdfdesk/internal/pdfcheck"
	"github.com/dgallion1/pdfdesk/internal/style"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("open object store", "error", err)
		os.Exit(1)
	}

	sheet := style.DefaultSheet()
	if cfg.StylesheetPath != "" {
		sheet, err = style.LoadSheetFile(cfg.StylesheetPath)
		if err != nil {
			log.Error("load stylesheet", "path", cfg.StylesheetPath, "error", err)
			os.Exit(1)
		}
	}

	gs := &pdfcheck.Ghostscript{Path: cfg.GhostscriptPath, ICCProfile: cfg.ICCProfilePath}
	srv := api.NewServer(store, gs, layout.NewRenderer(layout.A4()), sheet, log, cfg)

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

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if err := store.Close(); err != nil {
			log.Warn("close object store", "error", err)
		}
	}()

	log.Info("starting pdfdesk", "port", cfg.Port, "persistent", cfg.DataPath != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore picks SQLite when a data path is configured. The in-memory store
// gets a janitor that drops expired objects.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (blobstore.Store, error) {
	if cfg.DataPath != "" {
		return blobstore.OpenSQLite(cfg.DataPath)
	}

	mem := blobstore.NewMemory(cfg.ObjectTTL)
	if cfg.ObjectTTL > 0 {
		go func() {
			ticker := time.NewTicker(min(cfg.ObjectTTL, 10*time.Minute))
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if n := mem.Cleanup(); n > 0 {
						log.Info("expired objects removed", "count", n)
					}
				}
			}
		}()
	}
	return mem, nil
}
