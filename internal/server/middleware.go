package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"boardfront/internal/session"
)

// SessionMiddleware resolves the signed session cookie into a session
// and stores it in the request context. Requests without a valid
// session continue anonymously; route-level guards decide whether to
// reject them.
func SessionMiddleware(sessions session.Manager, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(session.CookieName)
		if err != nil {
			c.Next()
			return
		}

		sessionID, ok := session.VerifyValue(value, secret)
		if !ok {
			slog.Warn("Rejecting session cookie with bad signature",
				"request_id", c.GetString("request_id"),
			)
			c.Next()
			return
		}

		sess, err := sessions.Get(c.Request.Context(), sessionID)
		if err != nil {
			if !errors.Is(err, session.ErrSessionNotFound) && !errors.Is(err, session.ErrSessionExpired) {
				slog.Error("Session lookup failed",
					"session_id", sessionID,
					"error", err,
					"request_id", c.GetString("request_id"),
				)
			}
			c.Next()
			return
		}

		c.Set(session.ContextKey, sess)
		c.Next()
	}
}

// RequestIDMiddleware generates a unique request ID for log correlation
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()

		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()
	}
}

// LoggingMiddleware logs every request with structured attributes
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rw := newResponseWriter(c.Writer)
		c.Writer = rw

		c.Next()

		latency := time.Since(start)

		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		status := c.Writer.Status()

		attrs := []any{
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", float64(latency.Milliseconds()),
			"client_ip", c.ClientIP(),
			"response_size", rw.Size(),
		}
		if query != "" {
			attrs = append(attrs, "query", query)
		}
		if sess := session.FromContext(c); sess != nil {
			attrs = append(attrs, "user_id", sess.UserID)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.Error("Request failed - server error", attrs...)
		case status >= 400:
			slog.Warn("Request failed - client error", attrs...)
		default:
			slog.Info("Request completed", attrs...)
		}
	}
}
