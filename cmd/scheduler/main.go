// The scheduler binary runs the background side of the application: the
// outbox dispatcher, the asynq worker and the periodic cron entries.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	camprepo "patrimoine_backend/internal/campaigns/repository"
	campservice "patrimoine_backend/internal/campaigns/service"
	commrepo "patrimoine_backend/internal/communes/repository"
	commservice "patrimoine_backend/internal/communes/service"
	"patrimoine_backend/internal/email"
	"patrimoine_backend/internal/events"
	"patrimoine_backend/internal/notification/outbox"
	objetrepo "patrimoine_backend/internal/objets/repository"
	objetsync "patrimoine_backend/internal/objets/sync"
	"patrimoine_backend/internal/scheduler"
	"patrimoine_backend/platform/config"
	"patrimoine_backend/platform/db"
	"patrimoine_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	pool, err := db.NewPool(connectCtx, cfg)
	cancel()
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	outboxRepo := outbox.New(pool)

	var sender email.Sender = email.NopSender{}
	if cfg.GetEmailEnabled() {
		sender = email.NewSMTPSender(cfg)
	} else {
		log.Warn("email sending disabled; notifications will be dropped")
	}

	communesRepo := commrepo.New(pool, outboxRepo)
	communesService := commservice.New(communesRepo, outboxRepo, eventBus, log)

	campaignsRepo := camprepo.New(pool, outboxRepo)
	campaignsService := campservice.New(campaignsRepo, communesRepo, eventBus, log)

	syncClient := objetsync.NewClient(cfg.GetPalissyAPIURL(), cfg.GetPalissyRatePerSecond(), log)
	synchronizer := objetsync.NewSynchronizer(objetrepo.New(pool), syncClient, cfg.GetSyncWorkerCount(), log)

	worker, err := scheduler.NewWorker(cfg, pool, sender, campaignsService, communesService, synchronizer, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	dispatcher, err := scheduler.NewOutboxDispatcher(cfg, pool, log)
	if err != nil {
		log.Error("failed to initialize outbox dispatcher", "error", err)
		panic("failed to initialize outbox dispatcher: " + err.Error())
	}

	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		dispatcher.Run(gctx)
		return nil
	})
	g.Go(func() error {
		periodic.Run()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		periodic.Shutdown()
		return nil
	})

	_ = g.Wait()
	log.Info("scheduler stopped")
}
