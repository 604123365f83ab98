package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/traintrack/internal/catalog"
	"github.com/meltforce/traintrack/internal/config"
	"github.com/meltforce/traintrack/internal/logging"
	"github.com/meltforce/traintrack/internal/mcp"
	"github.com/meltforce/traintrack/internal/storage"
	"github.com/meltforce/traintrack/internal/tracker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (optional, env overrides apply)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the MCP protocol, so logs go to stderr or the log file.
	log, logCloser := logging.New(cfg.Log, os.Stderr)
	defer logCloser.Close()

	ctx := context.Background()
	provider, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer provider.Close()

	store, err := tracker.Open(ctx, provider, log)
	if err != nil {
		log.Error("failed to load training log", "error", err)
		os.Exit(1)
	}

	s := mcp.New(store, catalog.Default(), Version, log)
	log.Info("mcp server starting on stdio", "version", Version, "clients", len(store.Clients()))
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
