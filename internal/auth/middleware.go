package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepcycle/internal"
)

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "sleepcycle_session"

const sessionContextKey = "session"

// CookieAuth guards protected routes: it reads the session cookie, verifies
// the token, and stores the claims in the request context. Logout is purely
// client-directed cookie clearing, so a token presented here is accepted
// until its natural expiry.
func CookieAuth(verifier SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
			return
		}
		c.Set(sessionContextKey, claims)
		c.Next()
	}
}

// SessionFromContext returns the verified identity set by CookieAuth.
func SessionFromContext(c *gin.Context) *internal.SessionClaims {
	return c.MustGet(sessionContextKey).(*internal.SessionClaims)
}
