package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/petmatch-api/internal/config"
	"github.com/jwalitptl/petmatch-api/internal/email"
	"github.com/jwalitptl/petmatch-api/internal/handler"
	matchHandler "github.com/jwalitptl/petmatch-api/internal/handler/match"
	notificationHandler "github.com/jwalitptl/petmatch-api/internal/handler/notification"
	"github.com/jwalitptl/petmatch-api/internal/middleware"
	"github.com/jwalitptl/petmatch-api/internal/repository/postgres"
	"github.com/jwalitptl/petmatch-api/internal/router"
	"github.com/jwalitptl/petmatch-api/internal/service/feed"
	matchService "github.com/jwalitptl/petmatch-api/internal/service/match"
	notificationService "github.com/jwalitptl/petmatch-api/internal/service/notification"
	"github.com/jwalitptl/petmatch-api/pkg/auth"
	"github.com/jwalitptl/petmatch-api/pkg/logger"
	redisbroker "github.com/jwalitptl/petmatch-api/pkg/messaging/redis"
	"github.com/jwalitptl/petmatch-api/pkg/metrics"
	"github.com/jwalitptl/petmatch-api/pkg/validator"
)

const sessionIdleTTL = 30 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logg := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	notificationRepo := postgres.NewNotificationRepository(base)
	petRepo := postgres.NewPetRepository(base)
	interestRepo := postgres.NewInterestRepository(base)
	conversationRepo := postgres.NewConversationRepository(base)
	userRepo := postgres.NewUserRepository(base)

	broker, err := redisbroker.NewRedisBroker(redisbroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: time.Second,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &logg.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("petmatch", "api")

	publisher := feed.NewPublisher(broker, logg)
	feedSvc := feed.NewFeed(broker, notificationRepo, m, logg, cfg.Feed.RetryBackoff(), cfg.Feed.PollInterval())

	var emailSvc email.Service
	if cfg.Email.Enabled {
		emailSvc = email.NewService(cfg.Email)
	} else {
		emailSvc = email.NewNoopService()
	}

	notificationSvc := notificationService.NewService(notificationRepo, petRepo, conversationRepo, publisher, m, logg)
	matchSvc := matchService.NewService(petRepo, interestRepo, userRepo, notificationSvc, emailSvc, m, logg, cfg.Match.PageSize)
	sessions := matchService.NewManager(matchSvc, sessionIdleTTL)

	authSvc := auth.NewService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	v := validator.New()

	h := handler.NewHandler()
	notificationH := notificationHandler.NewHandler(notificationSvc, feedSvc, v)
	matchH := matchHandler.NewHandler(matchSvc, sessions, v)

	r := router.NewRouter(authMiddleware, notificationH, matchH, h, router.RouterConfig{
		RateLimitPerSecond: 50,
		RateBurst:          100,
		Timeout:            time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		CORSConfig:         middleware.DefaultCORSConfig(),
		MetricsPrefix:      "petmatch_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
