// The palissy-sync binary runs one catalogue reconciliation pass and
// exits. Pass -departement to restrict the run to one departement.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	objetrepo "patrimoine_backend/internal/objets/repository"
	objetsync "patrimoine_backend/internal/objets/sync"
	"patrimoine_backend/platform/config"
	"patrimoine_backend/platform/db"
	"patrimoine_backend/platform/logger"
)

func main() {
	departement := flag.String("departement", "", "restrict the sync to one departement code")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	pool, err := db.NewPool(connectCtx, cfg)
	cancel()
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := objetrepo.New(pool)
	client := objetsync.NewClient(cfg.GetPalissyAPIURL(), cfg.GetPalissyRatePerSecond(), log)
	synchronizer := objetsync.NewSynchronizer(repo, client, cfg.GetSyncWorkerCount(), log)

	codes := []string{*departement}
	if *departement == "" {
		codes, err = departementCodes(ctx, pool)
		if err != nil {
			log.Error("failed to list departements", "error", err)
			os.Exit(1)
		}
	}

	start := time.Now()
	failed := false
	for _, code := range codes {
		summary, err := synchronizer.RunDepartement(ctx, code)
		if err != nil {
			log.Error("catalogue sync failed", "departement", code, "error", err)
			failed = true
			continue
		}
		log.Info("departement synced", "departement", code,
			"total", summary.Total, "failures", summary.Failures)
	}
	log.Info("catalogue sync complete", "duration", time.Since(start))
	if failed {
		os.Exit(1)
	}
}

func departementCodes(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	rows, err := pool.Query(ctx, `SELECT DISTINCT departement_code FROM communes ORDER BY departement_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	codes := make([]string, 0)
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
