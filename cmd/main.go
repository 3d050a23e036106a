package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/segmentio/kafka-go"

	"github.com/sbilibin2017/fluxio-api/internal/config"
	"github.com/sbilibin2017/fluxio-api/internal/handlers"
	"github.com/sbilibin2017/fluxio-api/internal/logger"
	"github.com/sbilibin2017/fluxio-api/internal/middlewares"
	"github.com/sbilibin2017/fluxio-api/internal/password"
	"github.com/sbilibin2017/fluxio-api/internal/repositories"
	"github.com/sbilibin2017/fluxio-api/internal/router"
	"github.com/sbilibin2017/fluxio-api/internal/services"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// @title FluxIO API
// @version 1.0.0
// @description Account registration, login and email checks for FluxIO
// @BasePath /
// @schemes http
func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Version: %s, Commit: %s, Build: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// newEventWriter returns a Kafka writer for the configured brokers, or nil
// when publishing is disabled.
func newEventWriter(cfg config.Kafka) services.KafkaWriter {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion:             logDelivery,
	}
}

// logDelivery reports the outcome of an async batch write.
func logDelivery(messages []kafka.Message, err error) {
	if err != nil {
		logger.Log.Errorw("Failed to deliver user events to Kafka", "count", len(messages), "error", err)
		return
	}
	for _, m := range messages {
		logger.Log.Debugw("User event delivered to Kafka", "key", string(m.Key), "partition", m.Partition, "offset", m.Offset)
	}
}

// newHandler wires repositories, services and handlers into the router.
func newHandler(cfg config.Config, db *sqlx.DB, events services.EventPublisher) (http.Handler, error) {
	hasher, err := password.New(cfg.Password.Algorithm, cfg.Password.BcryptCost)
	if err != nil {
		return nil, err
	}
	logger.Log.Infow("Password hasher configured", "hasher", hasher.String())

	userReadRepo := repositories.NewUserReadRepository(db, middlewares.GetConnFromContext)
	userWriteRepo := repositories.NewUserWriteRepository(db, middlewares.GetConnFromContext)
	healthRepo := repositories.NewHealthRepository(db, middlewares.GetConnFromContext)

	authService := services.NewAuthService(userReadRepo, userWriteRepo, hasher, events)

	return router.NewRouter(cfg.App, cfg.CORS, db, router.Handlers{
		Root:       handlers.NewRootHandler(),
		TestDB:     handlers.NewTestDBHandler(healthRepo),
		Register:   handlers.NewRegisterHandler(authService),
		Login:      handlers.NewLoginHandler(authService),
		CheckEmail: handlers.NewCheckEmailHandler(authService),
	}), nil
}

// run initializes the logger, database and event publisher, then serves HTTP
// until ctx is cancelled or a termination signal arrives.
func run(ctx context.Context, cfg config.Config) error {
	if err := logger.Initialize(cfg.App.LogLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.App.LogLevel)

	logger.Log.Infow("Connecting to PostgreSQL", "host", cfg.DB.Host, "port", cfg.DB.Port, "db", cfg.DB.Name)
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("PostgreSQL connection error: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)

	publisher := services.NewUserEventPublisher(newEventWriter(cfg.Kafka))
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Log.Errorw("Kafka writer close error", "error", err)
		}
	}()
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Log.Info("KAFKA_BROKERS is empty, account events are disabled")
	}

	handler, err := newHandler(cfg, db, publisher)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.App.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
