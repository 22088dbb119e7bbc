package exports

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	campservice "patrimoine_backend/internal/campaigns/service"
	dashboardrepo "patrimoine_backend/internal/dashboard/repository"
	"patrimoine_backend/platform/httpkit"
	"patrimoine_backend/platform/validator"
)

const csvDateLayout = "2006-01-02"

// Handler handles export requests and API key management.
type Handler struct {
	repo      *Repository
	campaigns *campservice.Service
	val       *validator.Validator
}

// NewHandler creates a new export handler.
func NewHandler(repo *Repository, campaigns *campservice.Service, val *validator.Validator) *Handler {
	return &Handler{repo: repo, campaigns: campaigns, val: val}
}

// ---- API key management (conservateur JWT) ----

type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

type APIKeyResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"key_prefix"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
}

type CreateAPIKeyResponse struct {
	APIKeyResponse
	Key string `json:"key"`
}

func toAPIKeyResponse(key APIKey) APIKeyResponse {
	return APIKeyResponse{
		ID:         key.ID,
		Name:       key.Name,
		KeyPrefix:  key.KeyPrefix,
		IsActive:   key.IsActive,
		CreatedAt:  key.CreatedAt,
		LastUsedAt: key.LastUsedAt,
	}
}

// CreateAPIKey issues a new export key for the caller's departement.
// The plaintext key is returned once and never stored.
// POST /api/v1/exports/keys
func (h *Handler) CreateAPIKey(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to generate API key", nil)
		return
	}

	createdBy := identity.UserID()
	key, err := h.repo.CreateAPIKey(c.Request.Context(), identity.DepartementCode(), req.Name, hash, prefix, &createdBy)
	if httpkit.HandleError(c, err) {
		return
	}

	c.JSON(http.StatusCreated, CreateAPIKeyResponse{
		APIKeyResponse: toAPIKeyResponse(key),
		Key:            plaintext,
	})
}

// ListAPIKeys lists the export keys of the caller's departement.
// GET /api/v1/exports/keys
func (h *Handler) ListAPIKeys(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	keys, err := h.repo.ListAPIKeys(c.Request.Context(), identity.DepartementCode())
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]APIKeyResponse, len(keys))
	for i, k := range keys {
		result[i] = toAPIKeyResponse(k)
	}
	httpkit.OK(c, result)
}

// RevokeAPIKey deactivates an export key of the caller's departement.
// DELETE /api/v1/exports/keys/:keyId
func (h *Handler) RevokeAPIKey(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	keyID, err := uuid.Parse(c.Param("keyId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid key id", nil)
		return
	}

	if err := h.repo.RevokeAPIKey(c.Request.Context(), keyID, identity.DepartementCode()); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "api key revoked"})
}

// ---- Communes CSV (API key authenticated) ----

// ExportCommunesCSV streams the dashboard listing of the key's
// departement as CSV, ranked by statut_global.
// GET /api/v1/exports/communes.csv
func (h *Handler) ExportCommunesCSV(c *gin.Context) {
	departement, ok := getExportDepartement(c)
	if !ok {
		return
	}

	if keyID, ok := getExportKeyID(c); ok {
		h.repo.TouchAPIKey(c.Request.Context(), keyID)
	}

	rows, err := h.repo.ListCommuneRows(c.Request.Context(), departement)
	if httpkit.HandleError(c, err) {
		return
	}

	writer := startCsvResponse(c, fmt.Sprintf("communes_%s.csv", departement), []string{
		"code_insee", "nom", "statut", "statut_global",
		"objets", "objets_en_peril", "objets_disparus",
		"statut_dossier", "soumis_le", "examen_termine_le",
	})
	if writer == nil {
		return
	}

	for _, row := range rows {
		if err := writer.Write(communeCSV(row)); err != nil {
			return
		}
	}
	writer.Flush()
}

func communeCSV(row dashboardrepo.CommuneRow) []string {
	dossierStatus := ""
	if row.DossierStatus != nil {
		dossierStatus = *row.DossierStatus
	}
	return []string{
		row.CodeInsee,
		row.Nom,
		row.Status,
		strconv.Itoa(row.StatutGlobal),
		strconv.Itoa(row.ObjetsCount),
		strconv.Itoa(row.EnPerilCount),
		strconv.Itoa(row.DisparusCount),
		dossierStatus,
		formatCSVDate(row.SubmittedAt),
		formatCSVDate(row.CompletedAt),
	}
}

// ---- Campaign recipients CSV (conservateur JWT) ----

// ExportRecipientsCSV streams the recipient list of a campaign as CSV.
// GET /api/v1/campaigns/:id/recipients.csv
func (h *Handler) ExportRecipientsCSV(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	campaignID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid campaign id", nil)
		return
	}

	recipients, err := h.campaigns.Recipients(c.Request.Context(), campaignID)
	if httpkit.HandleError(c, err) {
		return
	}

	writer := startCsvResponse(c, fmt.Sprintf("destinataires_%s.csv", campaignID), []string{
		"code_insee", "nom", "etape_courante", "desinscrite",
	})
	if writer == nil {
		return
	}

	for _, r := range recipients {
		step := ""
		if r.CurrentStep != nil {
			step = string(*r.CurrentStep)
		}
		record := []string{r.CodeInsee, r.CommuneNom, step, strconv.FormatBool(r.Unsubscribed)}
		if err := writer.Write(record); err != nil {
			return
		}
	}
	writer.Flush()
}

// ---- Helpers ----

func startCsvResponse(c *gin.Context, filename string, headers []string) *csv.Writer {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write(headers); err != nil {
		return nil
	}
	return writer
}

func formatCSVDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(csvDateLayout)
}
