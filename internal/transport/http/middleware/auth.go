package middleware

import (
	"net/http"
	"strings"

	"github.com/fleetadmin/fleet-api/internal/session"
	"github.com/gin-gonic/gin"
)

const errUnauthorized = "Unauthorized"

// tokenVerifier is the subset of the token service the gate needs.
type tokenVerifier interface {
	Verify(raw string) (string, error)
}

// Auth gates protected routes. It extracts the Bearer token, verifies
// it, and attaches a session to the request context. Every failure —
// missing header, wrong scheme, malformed, expired — answers the same
// generic 401 so the response never reveals which check tripped.
func Auth(tokens tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errUnauthorized})
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		userID, err := tokens.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": errUnauthorized})
			return
		}

		ctx := session.WithSession(c.Request.Context(), session.Session{UserID: userID})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
