package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/petmatch-api/internal/repository/postgres"
	"github.com/jwalitptl/petmatch-api/internal/service/feed"
	notificationService "github.com/jwalitptl/petmatch-api/internal/service/notification"
	"github.com/jwalitptl/petmatch-api/internal/worker"
	"github.com/jwalitptl/petmatch-api/pkg/logger"
	redisbroker "github.com/jwalitptl/petmatch-api/pkg/messaging/redis"
	"github.com/jwalitptl/petmatch-api/pkg/metrics"
)

type Config struct {
	DatabaseURL   string        `envconfig:"DATABASE_URL" required:"true"`
	RedisURL      string        `envconfig:"REDIS_URL" required:"true"`
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"10m"`
	SweepLookback time.Duration `envconfig:"SWEEP_LOOKBACK" default:"24h"`
	HealthAddr    string        `envconfig:"HEALTH_ADDR" default:":8081"`
}

func setupHealthCheck(addr string, logg *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logg.ZL.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	logg := &logger.Logger{ZL: log.Logger}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		logg.ZL.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.RedisURL,
		MaxRetries:   3,
		RetryBackoff: time.Second,
	}, &logg.ZL)
	if err != nil {
		logg.ZL.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	notificationRepo := postgres.NewNotificationRepository(base)
	petRepo := postgres.NewPetRepository(base)
	conversationRepo := postgres.NewConversationRepository(base)

	m := metrics.NewMetrics("petmatch", "worker")
	publisher := feed.NewPublisher(broker, logg)
	notificationSvc := notificationService.NewService(notificationRepo, petRepo, conversationRepo, publisher, m, logg)

	sweeper := worker.NewDedupSweeper(notificationSvc, notificationRepo, m, logg, cfg.SweepInterval, cfg.SweepLookback)

	setupHealthCheck(cfg.HealthAddr, logg)

	ctx, cancel := context.WithCancel(context.Background())
	go sweeper.Start(ctx)
	logg.ZL.Info().Dur("interval", cfg.SweepInterval).Msg("Dedup sweeper started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.ZL.Info().Msg("Shutting down...")
	cancel()
}
