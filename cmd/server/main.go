// Package main runs the swap/loan HTTP service: venue clients, session token
// store, market snapshot cache, fee estimator, and the rate-limited JSON API.
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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"runesswap/internal/api"
	"runesswap/internal/fees"
	"runesswap/internal/marketdata"
	"runesswap/internal/ratelimit"
	"runesswap/internal/session"
	"runesswap/internal/storage"
	"runesswap/internal/storage/memory"
	"runesswap/internal/storage/migrations"
	pgstore "runesswap/internal/storage/postgres"
	"runesswap/internal/venue"
	"runesswap/internal/venue/liquidium"
	"runesswap/internal/venue/satsterminal"
)

// stores groups the persistence backends behind their interfaces.
type stores struct {
	sessions  storage.SessionTokenStore
	snapshots storage.MarketSnapshotStore
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	satsURL := flag.String("satsterminal-url", os.Getenv("SATSTERMINAL_URL"), "Liquidity venue base URL")
	satsAPIKey := flag.String("satsterminal-api-key", os.Getenv("SATSTERMINAL_API_KEY"), "Liquidity venue API key")
	liquidiumURL := flag.String("liquidium-url", os.Getenv("LIQUIDIUM_URL"), "Lending venue base URL")
	liquidiumAPIKey := flag.String("liquidium-api-key", os.Getenv("LIQUIDIUM_API_KEY"), "Lending venue API key")
	mempoolURL := flag.String("mempool-url", envOr("MEMPOOL_URL", "https://mempool.space"), "Fee estimate source base URL")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for the shared rate limiter (empty = in-process)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	logLevel := flag.String("log-level", envOr("LOG_LEVEL", "info"), "Log level (trace..error)")
	flag.Parse()

	log := newLogger(*logLevel)

	if *satsURL == "" || *liquidiumURL == "" {
		log.Fatal().Msg("--satsterminal-url and --liquidium-url are required")
	}
	if !*useMemory && *postgresDSN == "" {
		log.Fatal().Msg("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, cleanup, err := createStores(ctx, *postgresDSN, *useMemory, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create stores")
	}
	defer cleanup()

	limiter, err := createLimiter(ctx, *redisAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create rate limiter")
	}

	liquidity := satsterminal.New(*satsURL, venue.WithAPIKey(*satsAPIKey))
	lending := liquidium.New(*liquidiumURL, venue.WithAPIKey(*liquidiumAPIKey))
	estimator := fees.NewEstimator(*mempoolURL)

	sessions := session.New(session.Options{
		Store:  st.sessions,
		Logger: log.With().Str("component", "session").Logger(),
	})
	market := marketdata.New(marketdata.Options{
		Store:   st.snapshots,
		Fetcher: liquidity,
		Logger:  log.With().Str("component", "marketdata").Logger(),
	})

	server := api.New(api.Options{
		Liquidity: liquidity,
		Lending:   lending,
		Sessions:  sessions,
		Market:    market,
		Fees:      estimator,
		Limiter:   limiter,
		Logger:    log.With().Str("component", "api").Logger(),
	})

	httpServer := &http.Server{
		Addr:              *listenAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", *listenAddr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown did not complete cleanly")
	}
	log.Info().Msg("shutdown complete")
}

// createStores selects the storage backend and runs migrations on Postgres.
func createStores(ctx context.Context, dsn string, useMemory bool, log zerolog.Logger) (*stores, func(), error) {
	if useMemory {
		log.Warn().Msg("using in-memory storage, session tokens will not survive restarts")
		return &stores{
			sessions:  memory.NewSessionTokenStore(),
			snapshots: memory.NewMarketSnapshotStore(),
		}, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return &stores{
		sessions:  pgstore.NewSessionTokenStore(pool),
		snapshots: pgstore.NewMarketSnapshotStore(pool),
	}, pool.Close, nil
}

// createLimiter picks the Redis-backed limiter when an address is configured,
// otherwise the in-process one.
func createLimiter(ctx context.Context, redisAddr string) (ratelimit.Limiter, error) {
	if redisAddr == "" {
		return ratelimit.NewMemoryLimiter(), nil
	}

	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return ratelimit.NewRedisLimiter(client), nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
