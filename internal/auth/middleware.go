package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is the gin context key carrying the authenticated user id.
const ContextUserKey = "user_id"

// UserAuth enforces bearer JWT tokens signed with HS256 and threads the
// authenticated user id into the request context. Handlers must take the
// user id from here, never from request bodies.
func UserAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ContextUserKey, claims.UserID)
		c.Set("claims", claims)
		c.Next()
	}
}

// UserID extracts the authenticated user id set by UserAuth.
func UserID(c *gin.Context) string {
	id, _ := c.Get(ContextUserKey)
	s, _ := id.(string)
	return s
}
