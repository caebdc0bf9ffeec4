package main

import (
	"context"
	"crm-rep/internal/api"
	mw "crm-rep/internal/api/middleware"
	"crm-rep/internal/config"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/domain/user"
	"crm-rep/internal/event"
	"crm-rep/internal/infrastructure/database/memory"
	"crm-rep/internal/infrastructure/database/postgres"
	"crm-rep/internal/infrastructure/logging"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robfig/cron/v3"
)

// backend holds everything main has to tear down.
type backend struct {
	router     http.Handler
	limiter    *mw.RateLimiterMiddleware
	dbPool     *pgxpool.Pool
	rabbitConn *amqp.Connection
	publisher  *event.RabbitMQEventPublisher
}

func main() {
	configDir := flag.String("config", ".", "directory holding config.yml and .env")
	flag.Parse()

	cfg, logger := initializeApp(*configDir)

	b, err := initializeBackend(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeDatabase(b.dbPool, logger)

	cronScheduler := startMaintenanceJobs(cfg, logger, b.limiter)
	srv, serverErrors, shutdownChan := startServer(cfg, b.router, logger)
	handleShutdown(srv, cronScheduler, b, shutdownChan, serverErrors, logger)
}

func initializeApp(configDir string) (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Development backend starting...", "port", cfg.Server.Port)

	return cfg, logger
}

func initializeBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	b := &backend{}

	if cfg.Server.Auth.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.Server.Auth.JWTSecret = secret
		logger.Warn("No JWT secret configured; generated an ephemeral one, tokens will not survive a restart")
	}
	tokens, err := mw.NewTokenIssuer(cfg.Server.Auth)
	if err != nil {
		return nil, err
	}

	userRepo, customerRepo, refRepo, seed, err := initializeStorage(ctx, cfg, b, logger)
	if err != nil {
		return nil, err
	}

	publisher := initializePublisher(cfg, b, logger)

	userService := user.NewService(userRepo, cfg.Server.Auth.BcryptCost, logger)
	customerService := customer.NewService(customerRepo, refRepo, publisher, logger)

	if cfg.Server.SeedDemoData {
		if err := seed(ctx, userService); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
		logger.Info("Demo data seeded", slog.Int("users", len(memory.DefaultDemoUsers())))
	}

	b.limiter = mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger)
	b.router = api.SetupRouter(api.Services{
		Users:     userService,
		Customers: customerService,
		Tokens:    tokens,
		Limiter:   b.limiter,
	}, cfg, logger)
	return b, nil
}

type seedFunc func(ctx context.Context, users user.Service) error

// initializeStorage picks PostgreSQL when a database URL is configured and the
// in-memory store otherwise.
func initializeStorage(ctx context.Context, cfg *config.Config, b *backend, logger *slog.Logger) (user.Repository, customer.Repository, customer.ReferenceRepository, seedFunc, error) {
	if cfg.Database.URL == "" {
		logger.Info("No database URL configured; using in-memory storage")
		store := memory.NewStore()
		seed := func(ctx context.Context, users user.Service) error {
			return store.Seed(ctx, users, memory.DefaultDemoUsers())
		}
		return store.Users(), store.Customers(), store.References(), seed, nil
	}

	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	b.dbPool = dbPool
	if err := postgres.EnsureSchema(ctx, dbPool, logger); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	seed := func(ctx context.Context, users user.Service) error {
		if err := postgres.SeedReferences(ctx, dbPool, memory.DefaultReferences(), logger); err != nil {
			return err
		}
		return memory.SeedUsers(ctx, users, memory.DefaultDemoUsers())
	}
	return postgres.NewUserRepository(dbPool, logger),
		postgres.NewCustomerRepository(dbPool, logger),
		postgres.NewReferenceRepository(dbPool, logger),
		seed, nil
}

// initializePublisher connects to RabbitMQ when enabled; any failure degrades
// to a publisher that drops events.
func initializePublisher(cfg *config.Config, b *backend, logger *slog.Logger) event.EventPublisher {
	if !cfg.RabbitMQ.Enabled {
		return event.NopPublisher{}
	}

	conn, err := setupRabbitMQ(cfg, logger)
	if err != nil {
		logger.Warn("RabbitMQ unavailable; customer events will not be published", slog.Any("error", err))
		return event.NopPublisher{}
	}
	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Warn("Failed to set up RabbitMQ publisher", slog.Any("error", err))
		conn.Close()
		return event.NopPublisher{}
	}
	b.rabbitConn = conn
	b.publisher = publisher
	return publisher
}

func rabbitMQURI(cfg config.RabbitMQConfig) (string, error) {
	if cfg.Host == "" {
		return "", fmt.Errorf("RabbitMQ host is not configured")
	}
	if (cfg.Username == "") != (cfg.Password == "") {
		return "", fmt.Errorf("RabbitMQ username and password must be provided together")
	}
	port := cfg.Port
	if port == 0 {
		port = 5672
	}
	if cfg.Username != "" {
		return fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.Username, cfg.Password, cfg.Host, port), nil
	}
	return fmt.Sprintf("amqp://%s:%d/", cfg.Host, port), nil
}

func setupRabbitMQ(cfg *config.Config, logger *slog.Logger) (*amqp.Connection, error) {
	uri, err := rabbitMQURI(cfg.RabbitMQ)
	if err != nil {
		return nil, err
	}
	logger.Info("Connecting to RabbitMQ...", "host", cfg.RabbitMQ.Host, "port", cfg.RabbitMQ.Port)
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	logger.Info("Connected to RabbitMQ.")
	return conn, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	if dbPool == nil {
		return
	}
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func startMaintenanceJobs(cfg *config.Config, logger *slog.Logger, limiter *mw.RateLimiterMiddleware) *cron.Cron {
	logger.Info("Initializing maintenance job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Server.RateLimit.CleanupSchedule
	if scheduleSpec == "" {
		scheduleSpec = "@every 10m"
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		removed := limiter.Cleanup()
		logger.Debug("Rate limiter cleanup finished", "job_name", "RateLimiterCleanup", "removed", removed)
	}))
	if err != nil {
		logger.Error("Failed to schedule rate limiter cleanup", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled rate limiter cleanup", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	return c
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, b *backend,
	shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	triggerReason := waitForShutdownTrigger(shutdownChan, serverErrors, logger)
	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	stopCronScheduler(cronScheduler, logger)
	shutdownHTTPServer(srv, serverErrors, logger)
	closeRabbitMQ(b.publisher, b.rabbitConn, logger)

	logger.Info("Application shutdown process complete.")
}

func waitForShutdownTrigger(shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) string {
	select {
	case sig := <-shutdownChan:
		logger.Info("Shutdown signal received.", "signal", sig.String())
		return "signal: " + sig.String()
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		logger.Info("Server goroutine finished before signal.", "error", err)
		return "server exited"
	}
}

func stopCronScheduler(cronScheduler *cron.Cron, logger *slog.Logger) {
	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}
}

func closeRabbitMQ(publisher *event.RabbitMQEventPublisher, rabbitConn *amqp.Connection, logger *slog.Logger) {
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Warn("Failed to close RabbitMQ publishing channel", slog.Any("error", err))
		}
	}
	if rabbitConn == nil {
		logger.Info("RabbitMQ connection was not established, skipping close.")
		return
	}
	if rabbitConn.IsClosed() {
		logger.Info("RabbitMQ connection already closed, skipping close.")
		return
	}
	logger.Info("Closing RabbitMQ connection...")
	if err := rabbitConn.Close(); err != nil {
		logger.Error("Failed to close RabbitMQ connection gracefully", slog.Any("error", err))
	}
}

func shutdownHTTPServer(srv *http.Server, serverErrors <-chan error, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}
}
