package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace-chat/internal/auth"
)

// AuthMiddleware validates the Authorization header and stores the verified
// principal on the request context.
func AuthMiddleware(verifier auth.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		principal, err := verifier.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if !principal.Role.Can(auth.ActionChat) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role not permitted"})
			return
		}

		c.Set("userID", principal.UserID)
		c.Set("role", string(principal.Role))
		c.Next()
	}
}
