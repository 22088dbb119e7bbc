// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Role names carried in access tokens.
const (
	RoleCommuneUser  = "commune_user"
	RoleConservateur = "conservateur"
	RoleAdmin        = "admin"
)

// Identity represents the authenticated caller.
// This interface abstracts identity extraction from the web framework,
// allowing handlers to access user information without depending on Gin.
type Identity interface {
	// UserID returns the authenticated user's ID.
	UserID() uuid.UUID
	// Role returns the caller's role (commune_user, conservateur, admin).
	Role() string
	// CodeInsee returns the commune code for commune users, empty otherwise.
	CodeInsee() string
	// DepartementCode returns the departement for conservateurs, empty otherwise.
	DepartementCode() string
	// IsAuthenticated returns true if the caller is authenticated.
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	role          string
	codeInsee     string
	departement   string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID       { return i.userID }
func (i *identity) Role() string            { return i.role }
func (i *identity) CodeInsee() string       { return i.codeInsee }
func (i *identity) DepartementCode() string { return i.departement }
func (i *identity) IsAuthenticated() bool   { return i.authenticated }

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	userID, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{authenticated: false}
	}

	uid, ok := userID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	role := c.GetString(ContextRoleKey)
	codeInsee := c.GetString(ContextCodeInseeKey)
	departement := c.GetString(ContextDepartementKey)

	return &identity{
		userID:        uid,
		role:          role,
		codeInsee:     codeInsee,
		departement:   departement,
		authenticated: true,
	}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the caller is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
