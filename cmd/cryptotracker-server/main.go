package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptotracker/config"
	"cryptotracker/logging"
	"cryptotracker/server"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("CRYPTOTRACKER_CONFIG"), "Path to config.yaml")
		envPath    = flag.String("env", ".env", "Optional .env file")
		addr       = flag.String("addr", "", "Listen address (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.ListenAddr = *addr
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store server.Store = server.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		rs := server.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		defer rs.Close()
		if err := rs.Ping(ctx); err != nil {
			log.Fatalf("Redis unavailable at %s: %v", cfg.Redis.Addr, err)
		}
		store = rs
		log.WithField("addr", cfg.Redis.Addr).Info("Using redis cache")
	}

	upstream := server.NewCoinGecko(
		cfg.Server.CoinGeckoURL,
		cfg.Server.VsCurrency,
		cfg.Server.TopLimit,
		cfg.Server.HistoryDays,
		cfg.Server.UpstreamTimeout,
	)
	srv := server.New(upstream, store, log)

	if cfg.Server.WarmSchedule != "" {
		warmer, err := server.NewWarmer(ctx, srv, cfg.Server.WarmSchedule, log)
		if err != nil {
			log.Fatalf("Invalid warm schedule: %v", err)
		}
		go warmer.Warm()
		warmer.Start()
		defer warmer.Stop()
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.ListenAddr).Info("CryptoTracker server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Graceful shutdown failed")
		}
	}
}
