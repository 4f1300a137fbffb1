package delivery

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ServiceKeyMiddleware guards the review API with the deployment's
// service key. The webhook endpoint stays unauthenticated; the push
// relay cannot send credentials.
func ServiceKeyMiddleware(serviceKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if serviceKey == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service API key not configured"})
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header || token != serviceKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid service key"})
			c.Abort()
			return
		}

		c.Next()
	}
}
