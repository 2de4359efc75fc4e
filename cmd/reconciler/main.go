package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fundhive/backend/internal/config"
	"github.com/fundhive/backend/internal/db"
	"github.com/fundhive/backend/internal/events"
	"github.com/fundhive/backend/internal/repositories"
	"github.com/fundhive/backend/internal/services"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reconciler runs the daily campaign lifecycle pass on a cron schedule:
// activate approved campaigns whose start date arrived, then settle ended
// active campaigns as successful or failed. With -once it runs a single
// pass and exits, which is what the container healthcheck and manual
// operator runs use.

func main() {
	once := flag.Bool("once", false, "run a single pass and exit")
	flag.Parse()

	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, cfg.PostgresMaxConns, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	campaignRepo := repositories.NewCampaignRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)
	publisher := events.NewRedisPublisher(rdb, log)
	reconcileService := services.NewReconcileService(campaignRepo, auditRepo, publisher, log)

	runPass := func() {
		start := time.Now()
		result, err := reconcileService.RunPass(ctx, time.Now())
		if err != nil {
			log.Error("reconciliation pass failed", zap.Error(err))
			return
		}
		log.Info("reconciliation pass done",
			zap.Int("activated", result.Activated),
			zap.Int("successful", result.Successful),
			zap.Int("failed", result.Failed),
			zap.Duration("took", time.Since(start)))
	}

	if *once {
		runPass()
		return
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(cfg.ReconcileCron, runPass); err != nil {
		log.Fatal("invalid cron expression", zap.String("expr", cfg.ReconcileCron), zap.Error(err))
	}

	log.Info("reconciler started", zap.String("schedule", cfg.ReconcileCron))
	c.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down reconciler")
	cancel()
	<-c.Stop().Done()
}
