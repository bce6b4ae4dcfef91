package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cirada-tools/frion/internal/config"
	"github.com/cirada-tools/frion/internal/daemon"
	"github.com/cirada-tools/frion/internal/ionosphere"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("frion-watchd starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if err := cfg.CheckDaemon(); err != nil {
		slog.Error("incomplete config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"source", cfg.Ionosphere.Type,
		"spool_dir", cfg.Daemon.SpoolDir,
		"http_port", cfg.Daemon.HTTPPort,
		"result_ttl", cfg.Daemon.ResultTTL,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source, err := ionosphere.New(cfg.Ionosphere)
	if err != nil {
		slog.Error("could not build ionosphere source", "err", err)
		os.Exit(1)
	}

	// Job result store with background TTL eviction.
	st := daemon.NewStore(cfg.Daemon.ResultTTL)
	go st.Run(ctx)

	// WebSocket hub — pushes job events and the periodic job list.
	hub := daemon.NewHub(st, cfg.Daemon.BroadcastInterval)
	go hub.Run(ctx)

	metrics := daemon.NewMetrics(st)

	watcher := daemon.NewWatcher(
		cfg.Daemon.SpoolDir, cfg.Daemon.OutDir,
		source, cfg.Ionosphere.Timestep,
		st, hub, metrics,
	)
	go func() {
		if err := watcher.Run(ctx); err != nil {
			slog.Error("spool watcher stopped", "err", err)
			cancel()
		}
	}()

	// Hot-reload: rebuild the RM source from the updated config and swap it
	// into the watcher. Spool dir, ports and TTLs still need a restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			src, err := ionosphere.New(updated.Ionosphere)
			if err != nil {
				slog.Error("reloaded config has an unusable ionosphere source, keeping previous",
					"err", err)
				return
			}
			watcher.UpdateSource(src, updated.Ionosphere.Timestep)
			slog.Info("ionosphere source reloaded",
				"source", updated.Ionosphere.Type,
				"timestep", updated.Ionosphere.Timestep,
			)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", daemon.NewHandler(st, hub))
	httpMux.Handle("/metrics", metrics)
	httpMux.Handle("/ws/jobs", hub)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Daemon.HTTPPort),
		Handler: httpMux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Daemon.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("frion-watchd shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
}
