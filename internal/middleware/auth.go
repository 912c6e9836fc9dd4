package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "moneyrats/internal/errors"
	"moneyrats/internal/session"
)

// Context keys set by Identity.
const (
	UserIDKey = "userID"
	UserKey   = "user"
)

// TokenFromRequest returns the session token carried by the request: the
// session cookie if present, otherwise a Bearer Authorization header.
func TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(session.CookieName); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// Identity resolves the caller's session and, for a logged-in user, stores
// the user and its ID in the context. Anonymous requests pass through.
func Identity(resolver *session.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := resolver.Resolve(c.Request.Context(), TokenFromRequest(c)); user != nil {
			c.Set(UserIDKey, user.ID)
			c.Set(UserKey, user)
		}
		c.Next()
	}
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(UserIDKey); !ok {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}
