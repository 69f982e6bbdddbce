/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-21
 * Change License: AGPL-3.0
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/TraceApi/brasil-utils/internal/config"
	"github.com/TraceApi/brasil-utils/internal/core/ports"
	"github.com/TraceApi/brasil-utils/internal/core/service"
	"github.com/TraceApi/brasil-utils/internal/platform/bus"
	"github.com/TraceApi/brasil-utils/internal/platform/cache"
	"github.com/TraceApi/brasil-utils/internal/platform/metrics"
	"github.com/TraceApi/brasil-utils/internal/platform/storage/postgres"
	"github.com/TraceApi/brasil-utils/internal/platform/storage/s3"
	"github.com/TraceApi/brasil-utils/internal/platform/viacep"
	"github.com/TraceApi/brasil-utils/internal/transport/rest"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// 1. Config
	cfg := config.Load()
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// 2. Infrastructure
	ctx := context.Background()
	docCache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		logger.Error("cache setup failed", "backend", cfg.CacheBackend, "error", err)
		os.Exit(1)
	}
	defer closeCache()

	var eventBus ports.EventBus
	if cfg.EventsEnabled {
		redisBus := bus.NewRedisEventBus(cfg.RedisAddr)
		defer redisBus.Close()
		eventBus = redisBus
	}

	lookup := viacep.NewClient(viacep.Config{
		BaseURL:    cfg.ViaCEPBaseURL,
		UserAgent:  cfg.ViaCEPUserAgent,
		Timeout:    cfg.ViaCEPTimeout,
		MaxRetries: cfg.ViaCEPRetries,
	}, &http.Client{}, logger)

	// 3. Wiring
	defaults := ports.ResolveDefaults{
		Strict:   cfg.StrictDefault,
		UseCache: cfg.UseCacheDefault && docCache != nil,
		Validity: cfg.CacheValidity,
	}
	svc, err := service.NewAddressService(lookup, docCache, eventBus, metrics.New(prometheus.DefaultRegisterer), logger, defaults)
	if err != nil {
		logger.Error("failed to initialize service", "error", err)
		os.Exit(1)
	}

	router := rest.NewRouter(cfg,
		rest.NewValidationHandler(logger),
		rest.NewAddressHandler(svc, logger),
		logger,
	)

	// 4. Start
	addr := ":" + cfg.Port
	logger.Info("brasil-utils API starting", "addr", addr, "cache", cfg.CacheBackend, "env", cfg.Environment)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// newCache builds the configured backend. A nil cache (CACHE_BACKEND=none)
// turns caching off entirely.
func newCache(ctx context.Context, cfg *config.Config) (ports.DocumentCache, func(), error) {
	noop := func() {}

	switch cfg.CacheBackend {
	case config.CacheNone:
		return nil, noop, nil

	case config.CacheFile, "":
		return cache.NewFileStore(cfg.CacheDir, cfg.CacheMaxAge), noop, nil

	case config.CacheRedis:
		store := cache.NewRedisStore(cfg.RedisAddr, cfg.CacheMaxAge)
		return store, func() { store.Close() }, nil

	case config.CachePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("unable to connect to database: %w", err)
		}
		repo := postgres.NewCacheRepository(pool, cfg.CacheMaxAge)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		return repo, pool.Close, nil

	case config.CacheS3:
		store, err := s3.NewBlobStore(ctx, s3.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			MaxAge:    cfg.CacheMaxAge,
		})
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	}

	return nil, noop, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
}
