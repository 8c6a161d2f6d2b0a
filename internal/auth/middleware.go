package auth

import (
	"net/http"
	"strings"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ctxPrincipal = "auth.principal"
	ctxUser      = "auth.user"
	ctxToken     = "auth.token"
)

// Guard admits only requests carrying a live token of an admin of the configured tenant.
// The token comes from "Authorization: Bearer" or, for websocket upgrades, the token query param.
func Guard(provider *Provider, checker *Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		principal, err := provider.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		gate := NewGate(checker)
		if gate.HandleAuthState(c.Request.Context(), principal) != StateGranted {
			if err := provider.SignOut(c.Request.Context(), token); err != nil {
				logging.Error().Err(err).Str("user", principal.UserID).Msg("Error signing out denied session")
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrAccessDenied.Error()})
			return
		}

		c.Set(ctxPrincipal, principal)
		c.Set(ctxUser, gate.User())
		c.Set(ctxToken, token)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return strings.TrimSpace(c.Query("token"))
}

func PrincipalFrom(c *gin.Context) *Principal {
	p, _ := c.Get(ctxPrincipal)
	principal, _ := p.(*Principal)
	return principal
}

func UserFrom(c *gin.Context) *models.User {
	u, _ := c.Get(ctxUser)
	user, _ := u.(*models.User)
	return user
}

func TokenFrom(c *gin.Context) string {
	return c.GetString(ctxToken)
}
