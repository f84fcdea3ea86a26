// Command tabbadge overlays a count or indicator badge on the favicon of a
// live page driven over the Chrome DevTools Protocol.
//
// Usage:
//
//	tabbadge -url https://example.com -count 5 -hold     # own browser, badge until Ctrl-C
//	tabbadge -remote ws://127.0.0.1:9222 -url ... -count 3
//	tabbadge -url https://example.com -mcp               # expose tools over MCP stdio
//	tabbadge -config tabbadge.yaml -hold
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/tabbadge/badge"
	"github.com/hazyhaar/tabbadge/document/rodpage"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to tabbadge.yaml config file")
	pageURL := flag.String("url", "", "page to badge")
	remoteURL := flag.String("remote", "", "attach to a running browser (ws:// control URL)")
	headful := flag.Bool("headful", false, "launch the browser with a visible window")
	count := flag.Int("count", 0, "badge count; 0 restores the plain icon look")
	indicator := flag.Bool("indicator", false, "show the indicator glyph instead of a count")
	bg := flag.String("bg", "", "badge background color, e.g. #d00")
	fg := flag.String("fg", "", "badge text color, e.g. #fff")
	glyph := flag.String("glyph", "", "indicator glyph (single character)")
	hold := flag.Bool("hold", false, "keep the badge until interrupted, then restore the icons")
	mcpMode := flag.Bool("mcp", false, "serve the badge tools over MCP stdio")
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
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := defaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadConfigFile(*configPath)
		if err != nil {
			logger.Error("tabbadge: config", "error", err)
			os.Exit(1)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.URL = *pageURL
		case "remote":
			cfg.RemoteURL = *remoteURL
		case "headful":
			cfg.Headful = *headful
		case "count":
			cfg.Badge.Count = *count
		case "indicator":
			cfg.Badge.Indicator = *indicator
		case "bg":
			cfg.Badge.BackgroundColor = *bg
		case "fg":
			cfg.Badge.Color = *fg
		case "glyph":
			cfg.Badge.IndicatorGlyph = *glyph
		}
	})

	if cfg.URL == "" {
		fmt.Fprintln(os.Stderr, "usage: tabbadge -url <url> [-count N | -indicator] [-hold | -mcp]")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg, *hold, *mcpMode); err != nil {
		logger.Error("tabbadge: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg Config, hold, mcpMode bool) error {
	mgr := rodpage.NewManager(rodpage.Config{
		RemoteURL: cfg.RemoteURL,
		Headful:   cfg.Headful,
		Logger:    logger,
	})
	if _, err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	defer mgr.Close()

	page, err := rodpage.Open(ctx, mgr, cfg.URL)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.URL, err)
	}
	defer page.Close()

	b := badge.New(page, badge.WithLogger(logger))

	if mcpMode {
		return runMCP(ctx, b)
	}

	v := badge.Count(cfg.Badge.Count)
	if cfg.Badge.Indicator {
		v = badge.Indicator()
	}
	patch := &badge.OptionPatch{
		BackgroundColor: cfg.Badge.BackgroundColor,
		Color:           cfg.Badge.Color,
		Indicator:       cfg.Badge.IndicatorGlyph,
	}
	if !b.Set(ctx, v, patch) {
		return fmt.Errorf("badge not installed: %s", b.Availability(ctx))
	}
	logger.Info("badge installed", "url", page.URL(), "value", b.CurrentValue().String())

	if hold {
		<-ctx.Done()
		clearCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		b.Clear(clearCtx)
		logger.Info("badge cleared")
	}
	return nil
}

func runMCP(ctx context.Context, b *badge.Badger) error {
	srv := mcp.NewServer(&mcp.Implementation{Name: "tabbadge", Version: version}, nil)
	b.RegisterMCP(srv)
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}
