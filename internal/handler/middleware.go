package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/velora-shop/storefront-api/internal/domain/auth"
)

// identityKey is the gin context key holding the authenticated identity.
const identityKey = "auth.identity"

// TokenVerifier is the single authentication capability composed into every
// protected route group.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// AuthRequired returns a middleware enforcing bearer-token authentication.
// A missing Authorization header is 403; a malformed, invalid, or expired
// token is 401.
func AuthRequired(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondError(c, http.StatusForbidden, "No token provided")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			respondError(c, http.StatusUnauthorized, "Malformed token")
			return
		}

		id, err := tokens.Verify(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		c.Set(identityKey, id)
		c.Next()
	}
}

// identityFrom returns the authenticated identity stored by AuthRequired.
func identityFrom(c *gin.Context) *auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*auth.Identity); ok {
			return id
		}
	}
	return nil
}
