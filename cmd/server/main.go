package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "go.uber.org/automaxprocs"

	"github.com/Clark-Hu/movie-reviews/db/migrations"
	"github.com/Clark-Hu/movie-reviews/internal/catalog"
	"github.com/Clark-Hu/movie-reviews/internal/config"
	"github.com/Clark-Hu/movie-reviews/internal/errreport"
	httpserver "github.com/Clark-Hu/movie-reviews/internal/http"
	"github.com/Clark-Hu/movie-reviews/internal/repository"
	"github.com/Clark-Hu/movie-reviews/internal/seed"
	"github.com/Clark-Hu/movie-reviews/internal/store"
	"github.com/Clark-Hu/movie-reviews/internal/tmdb"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

// run owns every deferred cleanup so that startup failures still flush Sentry and close the pool.
func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	logger := log.New(os.Stdout, "[movie-reviews] ", log.LstdFlags|log.Lshortfile)

	sentryOn, err := errreport.Init(cfg.SentryDSN, cfg.SentryRelease, cfg.SentryEnvironment)
	if err != nil {
		return fmt.Errorf("init sentry: %w", err)
	}
	defer errreport.Flush(2 * time.Second)
	var hub *sentry.Hub
	if sentryOn {
		hub = sentry.CurrentHub()
	}

	var (
		repo   *repository.Repository
		health httpserver.HealthChecker
	)
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		st, err := openStore(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer func() {
			if stat := st.Stats(); stat != nil {
				logger.Printf("store: pool at shutdown total=%d idle=%d acquired=%d", stat.TotalConns(), stat.IdleConns(), stat.AcquiredConns())
			}
			st.Close()
		}()
		repo = repository.New(st)
		health = st
	default:
		logger.Printf("storage: using in-memory backend")
		repo = repository.NewMemory(repository.MemoryOptions{})
	}

	metadata, closeCache, err := buildMetadataSource(cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	svc := catalog.New(repo, catalog.Options{
		Logger:   logger,
		Reporter: errreport.New(logger, hub),
		Metadata: metadata,
	})

	if cfg.SeedDemoData {
		if _, err := seed.Run(ctx, svc, logger); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
	}

	server := httpserver.New(cfg, health, svc, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on :%s", cfg.Port)
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
	return nil
}

func openStore(ctx context.Context, cfg config.Config, logger *log.Logger) (*store.Store, error) {
	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := store.New(dbCtx, cfg.DBURL, store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	})
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(dbCtx, migrations.FS); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// buildMetadataSource returns nil when TMDB is not configured, which disables import.
func buildMetadataSource(cfg config.Config, logger *log.Logger) (catalog.MetadataSource, func(), error) {
	noop := func() {}
	if !cfg.ImportEnabled() {
		logger.Printf("tmdb: import disabled (TMDB_API_BASE_URL or TMDB_API_KEY not set)")
		return nil, noop, nil
	}

	client, err := tmdb.NewHTTPClient(cfg.TMDBBaseURL, cfg.TMDBAPIKey, cfg.TMDBImageBaseURL,
		time.Duration(cfg.TMDBTimeoutSecs)*time.Second, logger)
	if err != nil {
		return nil, noop, fmt.Errorf("init tmdb client: %w", err)
	}
	if !cfg.CacheEnabled() {
		return client, noop, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	logger.Printf("tmdb: caching details in redis at %s", cfg.RedisAddr)
	cached := tmdb.NewCachedClient(client, rdb, time.Duration(cfg.RedisCacheTTLSecs)*time.Second, logger)
	return cached, func() { _ = rdb.Close() }, nil
}
