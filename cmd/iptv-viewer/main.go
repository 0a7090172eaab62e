package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-viewer/internal/adapter/driven"
	"github.com/alorle/iptv-viewer/internal/adapter/driver"
	"github.com/alorle/iptv-viewer/internal/application"
	"github.com/alorle/iptv-viewer/internal/cache"
	"github.com/alorle/iptv-viewer/internal/circuitbreaker"
	"github.com/alorle/iptv-viewer/internal/config"
	"github.com/alorle/iptv-viewer/internal/lineup"
	"github.com/alorle/iptv-viewer/internal/metrics"
	portdriven "github.com/alorle/iptv-viewer/internal/port/driven"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Create structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting iptv-viewer",
		"addr", cfg.Addr(),
		"db_path", cfg.DB.Path,
		"log_level", cfg.LogLevel().String(),
		"fetch_timeout", cfg.Fetch.Timeout,
		"cache_dir", cfg.Cache.Dir,
		"player", cfg.Player.Command,
	)

	// Open BoltDB
	db, err := bbolt.Open(cfg.DB.Path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}()

	// Create driven adapters (repositories and external services)
	playlistRepo, err := driven.NewPlaylistBoltDBRepository(db)
	if err != nil {
		log.Fatalf("failed to create playlist repository: %v", err)
	}

	settingsRepo, err := driven.NewSettingsBoltDBRepository(db)
	if err != nil {
		log.Fatalf("failed to create settings repository: %v", err)
	}

	fetchCfg := driven.HTTPFetcherConfig{
		Timeout:   cfg.Fetch.Timeout,
		UserAgent: cfg.Fetch.UserAgent,
		CacheTTL:  cfg.Cache.TTL,
		Breakers: circuitbreaker.NewSet(circuitbreaker.Config{
			FailureThreshold: cfg.Breaker.FailureThreshold,
			Timeout:          cfg.Breaker.Timeout,
			OnStateChange: func(key string, from, to circuitbreaker.State) {
				metrics.SetCircuitBreakerState(key, to.String())
			},
		}, logger),
	}
	if cfg.Cache.Dir != "" {
		storage, err := cache.NewFileStorage(cfg.Cache.Dir)
		if err != nil {
			log.Fatalf("failed to create playlist cache: %v", err)
		}
		fetchCfg.Cache = storage
	}
	fetcher := driven.NewPlaylistHTTPFetcher(fetchCfg, nil, logger)

	var player portdriven.Player = driven.NewLogPlayer(logger)
	if cfg.Player.Command != "" {
		execPlayer, err := driven.NewExecPlayer(cfg.Player.Command, cfg.Player.Args, logger)
		if err != nil {
			log.Fatalf("failed to create player: %v", err)
		}
		player = execPlayer
	}

	// Create application services
	channelService := application.NewChannelService(lineup.NewStore(), fetcher, player, logger)
	playlistService := application.NewPlaylistService(playlistRepo, settingsRepo, channelService, logger)
	healthService := application.NewHealthService(playlistRepo, channelService)

	ctx := context.Background()

	seeds := make([]application.PlaylistSeed, 0, len(cfg.Playlists))
	for _, pl := range cfg.Playlists {
		seeds = append(seeds, application.PlaylistSeed{Name: pl.Name, URL: pl.URL})
	}
	if _, err := playlistService.Seed(ctx, seeds); err != nil {
		log.Fatalf("failed to seed playlists: %v", err)
	}

	if p, ok, err := playlistService.Restore(ctx); err != nil {
		logger.Error("failed to restore last opened playlist", "error", err)
	} else if ok {
		logger.Info("opened playlist", "id", p.ID(), "name", p.Name())
	} else {
		logger.Info("no playlist saved yet")
	}

	// Create HTTP handlers
	router := driver.NewRouter(driver.Handlers{
		Playlists: driver.NewPlaylistHTTPHandler(playlistService),
		Channels:  driver.NewChannelHTTPHandler(channelService, playlistService),
		Health:    driver.NewHealthHTTPHandler(healthService),
	}, logger.With("component", "http"), 30*time.Second)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	channelService.Close()

	logger.Info("server stopped")
}
