package proxy

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boardfront/internal/session"
	"boardfront/internal/token"
)

// RequireAuth rejects requests without a session holding a live bearer
// token. Checking expiry locally avoids a wasted round trip to the
// upstream with a token that is already known dead.
func RequireAuth(bridge *token.Bridge) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromContext(c)
		if sess == nil || sess.UserID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "login required"})
			return
		}

		tok := bridge.Get(sess)
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing access token"})
			return
		}
		if bridge.IsExpired(tok) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "access token expired",
				"code":    "TOKEN_EXPIRED",
			})
			return
		}

		c.Next()
	}
}
