package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/guhospital/hospital-api/internal/config"
	"github.com/guhospital/hospital-api/internal/repository/postgres"
	internalworker "github.com/guhospital/hospital-api/internal/worker"
	"github.com/guhospital/hospital-api/pkg/logger"
	"github.com/guhospital/hospital-api/pkg/messaging/redis"
	"github.com/guhospital/hospital-api/pkg/metrics"
	"github.com/guhospital/hospital-api/pkg/worker"
)

// workerConfig is environment driven, the worker runs without a config file.
type workerConfig struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"hospital"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	RedisURL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`

	OutboxBatchSize    int           `envconfig:"OUTBOX_BATCH_SIZE" default:"100"`
	OutboxPollInterval time.Duration `envconfig:"OUTBOX_POLL_INTERVAL" default:"5s"`
	OutboxRetries      int           `envconfig:"OUTBOX_RETRIES" default:"3"`
	OutboxRetryDelay   time.Duration `envconfig:"OUTBOX_RETRY_DELAY" default:"5s"`

	HealthPort string `envconfig:"HEALTH_PORT" default:"8081"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

func main() {
	_ = godotenv.Load()

	var cfg workerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zl := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	appLogger := logger.NewLogger(&logger.Config{Level: level, TimeFormat: time.RFC3339, Output: os.Stdout})

	db, err := postgres.NewDB(config.DatabaseConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{URL: cfg.RedisURL}, &zl)
	if err != nil {
		zl.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)
	prescriptionRepo := postgres.NewPrescriptionRepository(base)
	pharmacyRepo := postgres.NewPharmacyRepository(base)
	announcementRepo := postgres.NewAnnouncementRepository(base)

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.OutboxBatchSize,
		PollInterval:  cfg.OutboxPollInterval,
		RetryAttempts: cfg.OutboxRetries,
		RetryDelay:    cfg.OutboxRetryDelay,
	}, appLogger, metrics.NewMetrics("hospital", "worker"))

	scheduler := internalworker.NewScheduler(prescriptionRepo, pharmacyRepo, announcementRepo, outboxRepo, appLogger)
	scheduler.Start()
	defer scheduler.Stop()

	setupHealthCheck(cfg.HealthPort, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		zl.Info().Msg("shutting down worker...")
		cancel()
	}()

	processor.Start(ctx)
}

func setupHealthCheck(port string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":"+port, mux); err != nil {
			log.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
}
