// Package communes wires the commune/dossier workflow module.
package communes

import (
	"patrimoine_backend/internal/communes/handler"
	"patrimoine_backend/internal/communes/repository"
	"patrimoine_backend/internal/communes/service"
	"patrimoine_backend/internal/events"
	apphttp "patrimoine_backend/internal/http"
	"patrimoine_backend/internal/notification/outbox"
	"patrimoine_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module bundles the commune workflow dependencies.
type Module struct {
	handler *handler.Handler
	repo    repository.Repository
	service *service.Service
}

// NewModule constructs the commune module with its full dependency chain.
func NewModule(pool *pgxpool.Pool, outboxRepo *outbox.Repository, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool, outboxRepo)
	svc := service.New(repo, outboxRepo, bus, log)
	return &Module{
		handler: handler.New(svc),
		repo:    repo,
		service: svc,
	}
}

func (m *Module) Name() string { return "communes" }

// Repository exposes the commune repository for modules that need
// cross-context reads (campaigns archives recipient dossiers through it).
func (m *Module) Repository() repository.Repository { return m.repo }

// Service exposes the workflow service for the scheduler tasks.
func (m *Module) Service() *service.Service { return m.service }

// RegisterRoutes mounts commune and dossier workflow routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	communes := ctx.Protected.Group("/communes")
	{
		communes.GET("/:id", m.handler.GetCommune)
		communes.GET("/:id/dossier", m.handler.GetCurrentDossier)
		communes.PATCH("/:id/contact", m.handler.UpdateContact)
		communes.POST("/:id/start", m.handler.StartCommune)
		communes.POST("/:id/complete", m.handler.CompleteCommune)
		communes.POST("/:id/return-to-started", m.handler.ReturnCommuneToStarted)
	}

	dossiers := ctx.Conservateur.Group("/dossiers")
	{
		dossiers.POST("/:id/accept", m.handler.AcceptDossier)
		dossiers.POST("/:id/return-to-construction", m.handler.ReturnDossierToConstruction)
		dossiers.POST("/:id/archive", m.handler.ArchiveDossier)
	}
}
