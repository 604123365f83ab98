package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/meltforce/traintrack/internal/config"
	"github.com/meltforce/traintrack/internal/importer"
	"github.com/meltforce/traintrack/internal/logging"
	"github.com/meltforce/traintrack/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	filePath := flag.String("file", "", "path to localStorage backup JSON (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to storage")
	force := flag.Bool("force", false, "overwrite storage that already holds clients")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: traintrack-import [-config config.yaml] -file backup.json [-dry-run] [-force]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, logCloser := logging.New(cfg.Log, os.Stdout)
	defer logCloser.Close()

	f, err := os.Open(*filePath)
	if err != nil {
		log.Error("failed to open backup", "path", *filePath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	if *dryRun {
		log.Info("DRY RUN mode, nothing will be written to storage")
	}

	ctx := context.Background()
	provider, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer provider.Close()

	stats, err := importer.New(provider, log, *dryRun, *force).Import(ctx, f)
	printStats(log, stats)
	if err != nil {
		if errors.Is(err, importer.ErrTargetNotEmpty) {
			log.Error("import refused, rerun with -force to overwrite", "error", err)
		} else {
			log.Error("import failed", "error", err)
		}
		os.Exit(1)
	}
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"clients", stats.Clients,
		"clients_skipped", stats.ClientsSkipped,
		"sessions", stats.Sessions,
		"exercises", stats.Exercises,
		"entries_skipped", stats.EntriesSkipped,
		"orphan_sessions", stats.OrphanSessions,
	)
}
