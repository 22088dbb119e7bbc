// Package objets wires the objets catalogue module.
package objets

import (
	apphttp "patrimoine_backend/internal/http"
	"patrimoine_backend/internal/objets/handler"
	"patrimoine_backend/internal/objets/repository"
	"patrimoine_backend/internal/objets/service"
	"patrimoine_backend/internal/objets/sync"
	"patrimoine_backend/platform/config"
	"patrimoine_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module bundles the objets catalogue dependencies.
type Module struct {
	handler      *handler.Handler
	repo         repository.Repository
	synchronizer *sync.Synchronizer
}

// NewModule constructs the objets module, including the catalogue
// synchronizer used by the scheduler and the one-off runner.
func NewModule(pool *pgxpool.Pool, cfg config.SyncConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	client := sync.NewClient(cfg.GetPalissyAPIURL(), cfg.GetPalissyRatePerSecond(), log)
	return &Module{
		handler:      handler.New(service.New(repo, log)),
		repo:         repo,
		synchronizer: sync.NewSynchronizer(repo, client, cfg.GetSyncWorkerCount(), log),
	}
}

func (m *Module) Name() string { return "objets" }

// Repository exposes the objets repository for cross-module reads.
func (m *Module) Repository() repository.Repository { return m.repo }

// Synchronizer exposes the batch reconciliation runner.
func (m *Module) Synchronizer() *sync.Synchronizer { return m.synchronizer }

// RegisterRoutes mounts objet routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/objets", m.handler.ListByCommune)
	ctx.Protected.GET("/objets/:id", m.handler.GetObjet)
	ctx.Admin.GET("/sync-reports", m.handler.ListSyncReports)
}
