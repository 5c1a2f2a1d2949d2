package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/whack-a-blob/internal/attempts"
	"github.com/mauv0809/whack-a-blob/internal/cache"
	"github.com/mauv0809/whack-a-blob/internal/config"
	"github.com/mauv0809/whack-a-blob/internal/database"
	server "github.com/mauv0809/whack-a-blob/internal/http"
	"github.com/mauv0809/whack-a-blob/internal/identity"
	"github.com/mauv0809/whack-a-blob/internal/leaderboard"
	"github.com/mauv0809/whack-a-blob/internal/ledger"
	"github.com/mauv0809/whack-a-blob/internal/metrics"
	"github.com/mauv0809/whack-a-blob/internal/notifier/slack"
	"github.com/mauv0809/whack-a-blob/internal/pubsub"
	"github.com/mauv0809/whack-a-blob/internal/referral"
	"github.com/mauv0809/whack-a-blob/internal/scoring"
	"github.com/mauv0809/whack-a-blob/internal/season"
	"github.com/mauv0809/whack-a-blob/internal/user"
)

func main() {
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	ctx := context.Background()

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	log.Info("Database initialization time recorded", "duration_ms", time.Since(startTime).Milliseconds())
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	userStore := user.New(db)
	seasonStore := season.New(db)
	scoreLedger := ledger.New(db)

	var boardCache leaderboard.Cache
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn("Redis unavailable, serving leaderboards without cache", "error", err, "addr", cfg.RedisAddr)
		} else {
			defer redisClient.Close()
			boardCache = cache.NewLeaderboardCache(redisClient, cfg.CacheTTL)
		}
	}
	boards := leaderboard.NewBuilder(scoreLedger, seasonStore, boardCache, metricsSvc)

	scorer := scoring.NewService(scoreLedger, attempts.NewTracker(scoreLedger), nil, boards, metricsSvc)
	referrals := referral.NewLedger(userStore, referral.NewCreditStore(db), scoreLedger, scorer, seasonStore, metricsSvc, cfg.Referral)

	deps := server.Deps{
		Users:          userStore,
		Seasons:        seasonStore,
		Scorer:         scorer,
		Leaderboards:   boards,
		Referrals:      referrals,
		Identity:       identity.NewGateway(cfg.Auth),
		Notifier:       slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc),
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
	}

	// With pubsub configured, awards travel through the topic and come back on the push
	// endpoint. Without it the referral ledger is notified in process.
	if cfg.ProjectID != "" {
		if cfg.PushToken == "" {
			log.Fatalf("Error: PUBSUB_PUSH_TOKEN must be set when GCP_PROJECT is set.")
		}
		pubsubClient, err := pubsub.New(ctx, cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
		defer pubsubClient.Close()
		scorer.SetNotifier(pubsub.NewAwardPublisher(pubsubClient))
		deps.PushDecoder = pubsubClient
		deps.Awards = referrals
	} else {
		scorer.SetNotifier(referrals)
	}

	s := server.NewServer(cfg, deps)

	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
