// Package handler exposes the curator dashboard over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"patrimoine_backend/internal/dashboard/repository"
	"patrimoine_backend/internal/dashboard/service"
	"patrimoine_backend/platform/httpkit"
)

// Handler handles dashboard HTTP requests.
type Handler struct {
	svc *service.Service
}

// New creates a new dashboard handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ListCommunes pages through the conservateur's departement ranked by
// statut_global.
// GET /api/v1/dashboard/communes?statut=1&page=1&per_page=25&order=desc
func (h *Handler) ListCommunes(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	departement := identity.DepartementCode()
	if departement == "" {
		httpkit.Error(c, http.StatusForbidden, "no departement attached to this account", nil)
		return
	}

	params := repository.ListParams{
		DepartementCode: departement,
		SortDesc:        c.Query("order") == "desc",
	}
	params.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	params.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "25"))
	if statut := c.Query("statut"); statut != "" {
		n, err := strconv.Atoi(statut)
		if err != nil || n < 1 || n > 6 {
			httpkit.Error(c, http.StatusBadRequest, "invalid statut filter", nil)
			return
		}
		params.StatutGlobal = n
	}

	result, err := h.svc.ListCommunes(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetCommuneDetail serves the single-commune dashboard view.
// GET /api/v1/dashboard/communes/:id
func (h *Handler) GetCommuneDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid commune id", nil)
		return
	}

	result, err := h.svc.GetCommuneDetail(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
