package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meltforce/traintrack/internal/catalog"
	"github.com/meltforce/traintrack/internal/config"
	"github.com/meltforce/traintrack/internal/logging"
	"github.com/meltforce/traintrack/internal/server"
	"github.com/meltforce/traintrack/internal/storage"
	"github.com/meltforce/traintrack/internal/tracker"
	"github.com/meltforce/traintrack/internal/workout"
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

	log, logCloser := logging.New(cfg.Log, os.Stdout)
	defer logCloser.Close()
	log.Info("TrainTrack starting", "version", Version, "storage", cfg.Storage.Driver)

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
	log.Info("training log loaded", "clients", len(store.Clients()))

	timers := workout.NewTimers(cfg.Timer.Interval(), workout.WithTickHandler(workout.TickLogger(log)))
	srv := server.New(store, catalog.Default(), timers, log)
	defer srv.Close()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("listen failed", "addr", addr, "error", err)
		os.Exit(1)
	}
	log.Info("server starting", "addr", addr)

	httpSrv := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig)
	case err := <-serveErr:
		log.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
