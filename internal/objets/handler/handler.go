// Package handler exposes objets over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"patrimoine_backend/internal/objets/service"
	"patrimoine_backend/platform/httpkit"
)

// Handler handles HTTP requests for objets.
type Handler struct {
	svc *service.Service
}

// New creates a new objets handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// GetObjet retrieves an objet by id, falling back to the catalogue
// reference when the parameter is not a UUID.
// GET /api/v1/objets/:id
func (h *Handler) GetObjet(c *gin.Context) {
	param := c.Param("id")
	if id, err := uuid.Parse(param); err == nil {
		result, err := h.svc.GetByID(c.Request.Context(), id)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, result)
		return
	}

	result, err := h.svc.GetByPalissyRef(c.Request.Context(), param)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListByCommune lists the objets of a commune.
// GET /api/v1/objets?code_insee=51019
func (h *Handler) ListByCommune(c *gin.Context) {
	code := c.Query("code_insee")
	if len(code) != 5 {
		httpkit.Error(c, http.StatusBadRequest, "invalid code insee", nil)
		return
	}

	result, err := h.svc.ListByCommune(c.Request.Context(), code)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ListSyncReports returns recent catalogue reconciliation summaries.
// GET /api/v1/admin/sync-reports
func (h *Handler) ListSyncReports(c *gin.Context) {
	result, err := h.svc.ListSyncReports(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
