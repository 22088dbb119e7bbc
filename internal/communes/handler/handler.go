// Package handler exposes the commune workflow over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"patrimoine_backend/internal/communes/service"
	"patrimoine_backend/internal/communes/transport"
	"patrimoine_backend/platform/httpkit"
)

const (
	msgInvalidCommuneID = "invalid commune id"
	msgInvalidDossierID = "invalid dossier id"
)

// Handler handles HTTP requests for communes and dossiers.
type Handler struct {
	svc *service.Service
}

// New creates a new communes handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// GetCommune retrieves a commune.
// GET /api/v1/communes/:id
func (h *Handler) GetCommune(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCommuneID, nil)
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetCurrentDossier retrieves the commune's current dossier.
// GET /api/v1/communes/:id/dossier
func (h *Handler) GetCurrentDossier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCommuneID, nil)
		return
	}

	result, err := h.svc.GetCurrentDossier(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateContact updates the mairie contact phone number.
// PATCH /api/v1/communes/:id/contact
func (h *Handler) UpdateContact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCommuneID, nil)
		return
	}
	if httpkit.MustGetIdentity(c) == nil {
		return
	}

	var req transport.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.svc.UpdateContactPhone(c.Request.Context(), id, req.PhoneNumber)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// StartCommune opens the commune's inventory cycle.
// POST /api/v1/communes/:id/start
func (h *Handler) StartCommune(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCommuneID, nil)
		return
	}
	if httpkit.MustGetIdentity(c) == nil {
		return
	}

	result, err := h.svc.Start(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// CompleteCommune closes the recensement phase and submits the dossier.
// POST /api/v1/communes/:id/complete
func (h *Handler) CompleteCommune(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCommuneID, nil)
		return
	}
	if httpkit.MustGetIdentity(c) == nil {
		return
	}

	result, err := h.svc.Complete(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ReturnCommuneToStarted reopens a completed commune.
// POST /api/v1/communes/:id/return-to-started
func (h *Handler) ReturnCommuneToStarted(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidCommuneID, nil)
		return
	}
	if httpkit.MustGetIdentity(c) == nil {
		return
	}

	result, err := h.svc.ReturnToStarted(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// AcceptDossier records the conservateur's acceptance.
// POST /api/v1/dossiers/:id/accept
func (h *Handler) AcceptDossier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidDossierID, nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.svc.AcceptDossier(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ReturnDossierToConstruction is the administrative correction.
// POST /api/v1/admin/dossiers/:id/return-to-construction
func (h *Handler) ReturnDossierToConstruction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidDossierID, nil)
		return
	}

	result, err := h.svc.ReturnDossierToConstruction(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ArchiveDossier closes a cycle for good.
// POST /api/v1/admin/dossiers/:id/archive
func (h *Handler) ArchiveDossier(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidDossierID, nil)
		return
	}

	result, err := h.svc.ArchiveDossier(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
