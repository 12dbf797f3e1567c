package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kungpiyaphon/note-app-api/internal/config"
	"github.com/kungpiyaphon/note-app-api/internal/sessions"
	"github.com/kungpiyaphon/note-app-api/internal/tokens"
	"github.com/kungpiyaphon/note-app-api/internal/users"
	"github.com/kungpiyaphon/note-app-api/pkg/metrics"
)

// Context keys populated by RequireAuth.
const (
	ContextUserIDKey = "userID"
	ContextUserKey   = "user"
	ContextTokenKey  = "accessToken"
)

// AccessCookieName is the cookie checked when no Authorization header is sent.
const AccessCookieName = "accessToken"

// RequireAuth verifies the request's access token and loads the account it
// belongs to. Token lookup order: "Authorization: Bearer <token>" header,
// then the accessToken cookie. Revoked and expired tokens are rejected with
// the same 401 shape so clients cannot distinguish them.
func RequireAuth(cfg *config.Config, userSvc *users.Service, blacklist *sessions.Blacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			reject(c, "missing_token")
			return
		}

		revoked, err := blacklist.IsRevoked(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
			return
		}
		if revoked {
			reject(c, "revoked")
			return
		}

		userID, err := tokens.VerifyAccessToken(cfg, raw)
		if err != nil {
			reject(c, "invalid_token")
			return
		}

		u, err := userSvc.GetByID(c.Request.Context(), userID)
		if err != nil {
			// a token for a deleted account reads the same as a bad token;
			// a failing store must not
			if errors.Is(err, users.ErrNotFound) || errors.Is(err, users.ErrInvalidID) {
				reject(c, "unknown_user")
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": true, "message": "Internal Server Error"})
			return
		}

		c.Set(ContextUserIDKey, u.ID.Hex())
		c.Set(ContextUserKey, u)
		c.Set(ContextTokenKey, raw)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(AccessCookieName); err == nil {
		return cookie
	}
	return ""
}

func reject(c *gin.Context, reason string) {
	metrics.AuthFailures.WithLabelValues(reason).Inc()
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": true, "message": "Unauthorized"})
}
