package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blocktek-radio/internal/models"
	"blocktek-radio/internal/service"
)

// SessionCookie is the name of the cookie carrying the opaque session token.
const SessionCookie = "session"

const accountKey = "account"

// SessionAuth resolves the session cookie to an account and aborts with 401
// when the cookie is missing, expired or dangling.
func SessionAuth(auth service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthenticated", "error": "Not authenticated"})
			return
		}

		user, err := auth.ResolveSession(token)
		if err != nil {
			logger.Error("Failed to resolve session", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": "store_error", "error": "Server error"})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthenticated", "error": "Not authenticated"})
			return
		}

		c.Set(accountKey, user)
		c.Next()
	}
}

// Account returns the authenticated account set by SessionAuth.
func Account(c *gin.Context) *models.User {
	return c.MustGet(accountKey).(*models.User)
}
