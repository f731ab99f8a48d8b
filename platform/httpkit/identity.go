// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the authenticated user's identity.
// The user ID doubles as the tenant key: every quote, draft and invoice
// row is owned by exactly one user.
type Identity interface {
	// UserID returns the authenticated user's ID.
	UserID() uuid.UUID
	// IsAuthenticated returns true if the user is authenticated.
	IsAuthenticated() bool
}

// identity is the concrete implementation of Identity.
type identity struct {
	userID        uuid.UUID
	authenticated bool
}

func (i *identity) UserID() uuid.UUID {
	return i.userID
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	value, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{}
	}
	uid, ok := value.(uuid.UUID)
	if !ok || uid == uuid.Nil {
		return &identity{}
	}
	return &identity{userID: uid, authenticated: true}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}

// MustGetUserID returns the authenticated user's ID or aborts with 401.
func MustGetUserID(c *gin.Context) (uuid.UUID, bool) {
	id := MustGetIdentity(c)
	if id == nil {
		return uuid.Nil, false
	}
	return id.UserID(), true
}
