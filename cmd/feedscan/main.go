// CLAUDE:SUMMARY CLI entry point for feedscan: opens the feed, serves the control API and MCP tools, streams events.
// Command feedscan opens a feed in Chrome and adds an in-place "Search in feed"
// form to it. The search can also be toggled over HTTP or MCP.
//
// Usage:
//
//	feedscan -config feedscan.yaml            # everything from YAML config
//	feedscan -url https://x.com/home          # quick start, stdout events
//	feedscan -url https://x.com/home -http :8090
//	feedscan -config feedscan.yaml -mcp       # MCP tools on stdio
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/feedscan/feedscan"

	_ "modernc.org/sqlite"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to feedscan.yaml config file")
	pageURL := flag.String("url", "", "feed URL (overrides config)")
	httpAddr := flag.String("http", "", "control API listen address (overrides config)")
	mcpStdio := flag.Bool("mcp", false, "serve MCP tools on stdio")
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *pageURL, *httpAddr, *mcpStdio); err != nil {
		logger.Error("feedscan: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, pageURL, httpAddr string, mcpStdio bool) error {
	cfg := feedscan.DefaultConfig()
	if configPath != "" {
		loaded, err := feedscan.LoadConfigFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if pageURL != "" {
		cfg.Page.URL = pageURL
	}
	if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}

	buildSinks := feedscan.SinksFromConfig
	if mcpStdio {
		// stdout carries the MCP stream.
		buildSinks = feedscan.StdioSinks
	}
	sinks, err := buildSinks(cfg.Sinks, logger)
	if err != nil {
		return err
	}

	s := feedscan.New(cfg, logger, sinks...)
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.Stop()

	if cfg.HTTP.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           s.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("feedscan: control API listening", "addr", cfg.HTTP.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("feedscan: http server", "error", err)
			}
		}()
		defer func() {
			shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutCtx)
		}()
	}

	if mcpStdio {
		srv := mcp.NewServer(&mcp.Implementation{Name: "feedscan", Version: version}, nil)
		s.RegisterMCP(srv)
		logger.Info("feedscan: MCP tools on stdio")
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}

	<-ctx.Done()
	return nil
}
