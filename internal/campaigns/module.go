// Package campaigns wires the outreach campaign module.
package campaigns

import (
	"patrimoine_backend/internal/campaigns/handler"
	"patrimoine_backend/internal/campaigns/repository"
	"patrimoine_backend/internal/campaigns/service"
	communerepo "patrimoine_backend/internal/communes/repository"
	"patrimoine_backend/internal/events"
	apphttp "patrimoine_backend/internal/http"
	"patrimoine_backend/internal/notification/outbox"
	"patrimoine_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module bundles the campaign dependencies.
type Module struct {
	handler *handler.Handler
	repo    repository.Repository
	service *service.Service
}

// NewModule constructs the campaign module. The communes repository is
// shared so campaign start can archive recipient dossiers.
func NewModule(pool *pgxpool.Pool, communes communerepo.Repository, outboxRepo *outbox.Repository, bus events.Bus, log *logger.Logger) *Module {
	repo := repository.New(pool, outboxRepo)
	svc := service.New(repo, communes, bus, log)
	return &Module{
		handler: handler.New(svc),
		repo:    repo,
		service: svc,
	}
}

func (m *Module) Name() string { return "campaigns" }

// Service exposes the campaign service for the scheduler tasks and the
// recipients CSV export.
func (m *Module) Service() *service.Service { return m.service }

// RegisterRoutes mounts campaign management routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	campaigns := ctx.Conservateur.Group("/campaigns")
	{
		campaigns.POST("", m.handler.CreateCampaign)
		campaigns.GET("", m.handler.ListCampaigns)
		campaigns.GET("/:id", m.handler.GetCampaign)
		campaigns.PATCH("/:id", m.handler.UpdateCampaign)
		campaigns.DELETE("/:id", m.handler.DeleteCampaign)
		campaigns.POST("/:id/plan", m.handler.PlanCampaign)
		campaigns.GET("/:id/recipients", m.handler.ListRecipients)
		campaigns.POST("/:id/recipients/default", m.handler.AddDefaultRecipients)
	}
}
