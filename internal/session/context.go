package session

import "github.com/gin-gonic/gin"

// ContextKey is the gin context key the resolved session is stored under.
const ContextKey = "session"

// FromContext returns the session resolved by the session middleware, or
// nil when the request carries no valid session.
func FromContext(c *gin.Context) *Session {
	v, ok := c.Get(ContextKey)
	if !ok {
		return nil
	}
	sess, ok := v.(*Session)
	if !ok {
		return nil
	}
	return sess
}
