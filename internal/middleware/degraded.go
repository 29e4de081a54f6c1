package middleware

import (
	"procserv_training_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// RequireDatabase short-circuits routes that cannot work without a
// configured store. The catalog endpoints stay up in degraded mode;
// everything that writes or reads per-user state answers 503.
func RequireDatabase(available bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !available {
			util.ServiceUnavailable(c, "database not configured")
			c.Abort()
			return
		}
		c.Next()
	}
}
