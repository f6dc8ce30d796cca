package auth

import (
	"crypto/subtle"
	"net/http"

	"tenderaudit/internal/config"

	"github.com/gin-gonic/gin"
)

// AuditKey checks the request for a valid audit key (header or query).
// Use for API routes only. Expects X-Audit-Key header or audit_key query
// param to match AUDIT_KEY in .env.
func AuditKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		expect := config.AuditKey()
		if expect == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server not configured"})
			return
		}
		got := c.GetHeader("X-Audit-Key")
		if got == "" {
			got = c.Query("audit_key")
		}
		if !constantTimeEqual(got, expect) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid audit key"})
			return
		}
		c.Next()
	}
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
