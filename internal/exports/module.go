package exports

import (
	"github.com/jackc/pgx/v5/pgxpool"

	campservice "patrimoine_backend/internal/campaigns/service"
	apphttp "patrimoine_backend/internal/http"
	"patrimoine_backend/platform/validator"
)

// Module is the exports bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule creates and initializes the exports module. The campaigns
// service backs the recipients CSV export.
func NewModule(pool *pgxpool.Pool, campaigns *campservice.Service, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	return &Module{
		handler: NewHandler(repo, campaigns, val),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "exports" }

// RegisterRoutes mounts export routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/exports")
	public.Use(APIKeyAuthMiddleware(m.repo))
	public.GET("/communes.csv", m.handler.ExportCommunesCSV)

	keys := ctx.Conservateur.Group("/exports/keys")
	keys.POST("", m.handler.CreateAPIKey)
	keys.GET("", m.handler.ListAPIKeys)
	keys.DELETE("/:keyId", m.handler.RevokeAPIKey)

	ctx.Conservateur.GET("/campaigns/:id/recipients.csv", m.handler.ExportRecipientsCSV)
}

var _ apphttp.Module = (*Module)(nil)
