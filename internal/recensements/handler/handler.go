// Package handler exposes recensements over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"patrimoine_backend/internal/recensements/service"
	"patrimoine_backend/internal/recensements/transport"
	"patrimoine_backend/platform/httpkit"
)

const (
	msgInvalidRecensementID = "invalid recensement id"
	msgInvalidDossierID     = "invalid dossier id"
	msgInvalidPayload       = "invalid request payload"
)

// Handler handles HTTP requests for recensements.
type Handler struct {
	svc *service.Service
}

// New creates a new recensements handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// GetRecensement retrieves a recensement.
// GET /api/v1/recensements/:id
func (h *Handler) GetRecensement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRecensementID, nil)
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListByDossier lists the live recensements of a dossier.
// GET /api/v1/dossiers/:id/recensements
func (h *Handler) ListByDossier(c *gin.Context) {
	dossierID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidDossierID, nil)
		return
	}

	result, err := h.svc.ListByDossier(c.Request.Context(), dossierID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CreateRecensement opens a recensement for an objet.
// POST /api/v1/recensements
func (h *Handler) CreateRecensement(c *gin.Context) {
	var req transport.CreateRecensementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidPayload, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

// UpdateRecensement edits the observation fields.
// PATCH /api/v1/recensements/:id
func (h *Handler) UpdateRecensement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRecensementID, nil)
		return
	}

	var req transport.UpdateRecensementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidPayload, err.Error())
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CompleteRecensement marks the recensement done.
// POST /api/v1/recensements/:id/complete
func (h *Handler) CompleteRecensement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRecensementID, nil)
		return
	}

	result, err := h.svc.Complete(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AnalyseRecensement records the conservateur review.
// POST /api/v1/recensements/:id/analyse
func (h *Handler) AnalyseRecensement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRecensementID, nil)
		return
	}

	var req transport.AnalyseRecensementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidPayload, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.Analyse(c.Request.Context(), id, identity.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteRecensement soft-deletes a recensement with a reason.
// DELETE /api/v1/recensements/:id
func (h *Handler) DeleteRecensement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRecensementID, nil)
		return
	}

	var req transport.DeleteRecensementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidPayload, err.Error())
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, req.Reason); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
