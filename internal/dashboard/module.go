// Package dashboard wires the curator dashboard module.
package dashboard

import (
	communerepo "patrimoine_backend/internal/communes/repository"
	"patrimoine_backend/internal/dashboard/handler"
	"patrimoine_backend/internal/dashboard/repository"
	"patrimoine_backend/internal/dashboard/service"
	apphttp "patrimoine_backend/internal/http"
	recrepo "patrimoine_backend/internal/recensements/repository"
	"patrimoine_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module bundles the dashboard dependencies.
type Module struct {
	handler *handler.Handler
}

// NewModule constructs the dashboard module. It reads commune and
// recensement data through the owning modules' repositories.
func NewModule(pool *pgxpool.Pool, communesRepo communerepo.Repository, recensementsRepo recrepo.Repository, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, communesRepo, recensementsRepo, log)
	return &Module{handler: handler.New(svc)}
}

func (m *Module) Name() string { return "dashboard" }

// RegisterRoutes mounts the dashboard routes for conservateurs.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	dashboard := ctx.Conservateur.Group("/dashboard")
	{
		dashboard.GET("/communes", m.handler.ListCommunes)
		dashboard.GET("/communes/:id", m.handler.GetCommuneDetail)
	}
}
