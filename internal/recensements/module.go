// Package recensements wires the recensement module.
package recensements

import (
	"patrimoine_backend/internal/events"
	apphttp "patrimoine_backend/internal/http"
	"patrimoine_backend/internal/recensements/handler"
	"patrimoine_backend/internal/recensements/repository"
	"patrimoine_backend/internal/recensements/service"
	"patrimoine_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module bundles the recensement dependencies.
type Module struct {
	handler *handler.Handler
	repo    repository.Repository
}

// NewModule constructs the recensements module.
func NewModule(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	return &Module{
		handler: handler.New(svc),
		repo:    repo,
	}
}

func (m *Module) Name() string { return "recensements" }

// Repository exposes the recensement repository for the catalogue
// synchronizer cascade.
func (m *Module) Repository() repository.Repository { return m.repo }

// RegisterRoutes mounts recensement routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	recensements := ctx.Protected.Group("/recensements")
	{
		recensements.POST("", m.handler.CreateRecensement)
		recensements.GET("/:id", m.handler.GetRecensement)
		recensements.PATCH("/:id", m.handler.UpdateRecensement)
		recensements.POST("/:id/complete", m.handler.CompleteRecensement)
		recensements.DELETE("/:id", m.handler.DeleteRecensement)
	}
	ctx.Protected.GET("/dossiers/:id/recensements", m.handler.ListByDossier)

	ctx.Conservateur.POST("/recensements/:id/analyse", m.handler.AnalyseRecensement)
}
