// Command badged serves badge composition over HTTP.
//
//	GET /v1/badge?icon=<url|data-uri>&count=5&dpr=2&format=png
//
// Requests are logged to an SQLite database with daily retention cleanup.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/tabbadge/dbopen"
	"github.com/hazyhaar/tabbadge/iconload"
	"github.com/hazyhaar/tabbadge/observability"
)

func main() {
	addr := flag.String("addr", ":8086", "listen address")
	dbPath := flag.String("db", "db/badged.db", "request log database path")
	retentionDays := flag.Int("retention-days", 14, "request log retention; 0 disables cleanup")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *addr, *dbPath, *retentionDays); err != nil {
		logger.Error("badged: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, addr, dbPath string, retentionDays int) error {
	db, err := dbopen.Open(dbPath,
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(observability.Schema))
	if err != nil {
		return err
	}
	defer db.Close()

	reqlog := observability.NewRequestLogger(db, observability.WithLogger(logger))
	loader := iconload.New(iconload.WithLogger(logger))
	router := newRouter(logger, reqlog, loader)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go cleanupLoop(ctx, logger, db, retentionDays)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("badged: listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("badged: stopped")
	}
	return nil
}

func cleanupLoop(ctx context.Context, logger *slog.Logger, db *sql.DB, retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := observability.Cleanup(ctx, db, retentionDays)
			if err != nil {
				logger.Warn("badged: retention cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("badged: retention cleanup", "deleted", n)
			}
		}
	}
}
