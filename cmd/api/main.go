package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"patrimoine_backend/internal/auth"
	"patrimoine_backend/internal/campaigns"
	"patrimoine_backend/internal/communes"
	"patrimoine_backend/internal/dashboard"
	"patrimoine_backend/internal/events"
	"patrimoine_backend/internal/exports"
	apphttp "patrimoine_backend/internal/http"
	"patrimoine_backend/internal/http/router"
	"patrimoine_backend/internal/notification"
	"patrimoine_backend/internal/notification/outbox"
	"patrimoine_backend/internal/objets"
	"patrimoine_backend/internal/recensements"
	"patrimoine_backend/migrations"
	"patrimoine_backend/platform/config"
	"patrimoine_backend/platform/db"
	"patrimoine_backend/platform/logger"
	"patrimoine_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)
	outboxRepo := outbox.New(pool)
	val := validator.New()

	authModule := auth.NewModule(pool, cfg, log)
	communesModule := communes.NewModule(pool, outboxRepo, eventBus, log)
	recensementsModule := recensements.NewModule(pool, eventBus, log)
	objetsModule := objets.NewModule(pool, cfg, log)
	dashboardModule := dashboard.NewModule(pool, communesModule.Repository(), recensementsModule.Repository(), log)
	campaignsModule := campaigns.NewModule(pool, communesModule.Repository(), outboxRepo, eventBus, log)
	exportsModule := exports.NewModule(pool, campaignsModule.Service(), val)

	notification.NewHandlers(communesModule.Repository(), outboxRepo, log).RegisterHandlers(eventBus)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			communesModule,
			recensementsModule,
			objetsModule,
			dashboardModule,
			campaignsModule,
			exportsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
