package postgres

import (
	"context"
	"crm-rep/internal/config"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "crm-devbackend"

// NewConnectionPool opens the pool and waits until the server answers a ping,
// retrying cfg.ConnectAttempts times so the backend can start alongside a
// database container that is still booting.
func NewConnectionPool(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is empty in configuration")
	}
	logger = logger.With("component", "postgres")

	poolConfig, err := configurePool(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("Opening PostgreSQL pool", "host", poolConfig.ConnConfig.Host, "db", poolConfig.ConnConfig.Database, "max_conns", poolConfig.MaxConns)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := waitForDatabase(ctx, pool, cfg.ConnectAttempts, cfg.ConnectRetryDelay, logger); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func configurePool(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config from URL: %w", err)
	}

	poolConfig.MaxConns = 10
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute
	if _, ok := poolConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	return poolConfig, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// waitForDatabase pings db up to attempts times, sleeping delay between tries.
func waitForDatabase(ctx context.Context, db pinger, attempts int, delay time.Duration, logger *slog.Logger) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		lastErr = db.Ping(pingCtx)
		cancel()
		if lastErr == nil {
			logger.Info("PostgreSQL is reachable", "attempt", attempt)
			return nil
		}

		logger.Warn("Database ping failed", "attempt", attempt, "of", attempts, "error", lastErr)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("failed to ping database after %d attempt(s): %w", attempts, lastErr)
}
