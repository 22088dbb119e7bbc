// Package handler exposes campaign management over HTTP. All routes
// require the conservateur role; campaigns are scoped to the
// conservateur's departement.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"patrimoine_backend/internal/campaigns/service"
	"patrimoine_backend/internal/campaigns/transport"
	"patrimoine_backend/platform/httpkit"
)

const msgInvalidCampaignID = "invalid campaign id"

// Handler handles HTTP requests for campaigns.
type Handler struct {
	svc *service.Service
}

// New creates a new campaigns handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// CreateCampaign creates a draft campaign in the caller's departement.
// POST /api/v1/campaigns
func (h *Handler) CreateCampaign(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	var req transport.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), identity.DepartementCode(), req.Dates())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// ListCampaigns lists the campaigns of the caller's departement.
// GET /api/v1/campaigns
func (h *Handler) ListCampaigns(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.ListByDepartement(c.Request.Context(), identity.DepartementCode())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetCampaign retrieves one campaign.
// GET /api/v1/campaigns/:id
func (h *Handler) GetCampaign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCampaignID, nil)
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateCampaign replaces the milestones of a draft campaign.
// PATCH /api/v1/campaigns/:id
func (h *Handler) UpdateCampaign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCampaignID, nil)
		return
	}
	var req transport.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.svc.UpdateDates(c.Request.Context(), id, req.Dates())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteCampaign removes a draft campaign.
// DELETE /api/v1/campaigns/:id
func (h *Handler) DeleteCampaign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCampaignID, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// AddDefaultRecipients attaches every eligible commune of the
// departement to the campaign.
// POST /api/v1/campaigns/:id/recipients/default
func (h *Handler) AddDefaultRecipients(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCampaignID, nil)
		return
	}

	result, err := h.svc.AddDefaultRecipients(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListRecipients lists the recipients of a campaign.
// GET /api/v1/campaigns/:id/recipients
func (h *Handler) ListRecipients(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCampaignID, nil)
		return
	}

	result, err := h.svc.ListRecipients(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// PlanCampaign transitions a draft campaign to planned.
// POST /api/v1/campaigns/:id/plan
func (h *Handler) PlanCampaign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCampaignID, nil)
		return
	}

	result, err := h.svc.Plan(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
