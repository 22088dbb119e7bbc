package exports

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"patrimoine_backend/platform/httpkit"
)

const (
	ctxExportDepartement = "exportDepartement"
	ctxExportKeyID       = "exportKeyID"
)

// APIKeyAuthMiddleware validates export API keys for the public export
// endpoints and scopes the request to the key's departement.
func APIKeyAuthMiddleware(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		plaintext := c.GetHeader("X-Export-API-Key")
		if plaintext == "" {
			httpkit.Error(c, http.StatusUnauthorized, "missing export API key", nil)
			c.Abort()
			return
		}

		key, err := repo.GetAPIKeyByHash(c.Request.Context(), HashKey(plaintext))
		if err != nil {
			httpkit.Error(c, http.StatusUnauthorized, "invalid export API key", nil)
			c.Abort()
			return
		}

		c.Set(ctxExportDepartement, key.DepartementCode)
		c.Set(ctxExportKeyID, key.ID)
		c.Next()
	}
}

func getExportDepartement(c *gin.Context) (string, bool) {
	departement := c.GetString(ctxExportDepartement)
	if departement == "" {
		httpkit.Error(c, http.StatusUnauthorized, "missing departement context", nil)
		return "", false
	}
	return departement, true
}

func getExportKeyID(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get(ctxExportKeyID)
	if !ok {
		return uuid.UUID{}, false
	}
	keyID, ok := val.(uuid.UUID)
	return keyID, ok
}
