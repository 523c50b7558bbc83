package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CookieName is the session cookie name exposed to the browser.
const CookieName = "sessionId"

// SignValue produces the cookie value for a session ID: the ID followed
// by an HMAC-SHA256 signature keyed with the session secret. Tampered
// cookies fail verification before the store is ever consulted.
func SignValue(sessionID, secret string) string {
	return sessionID + "." + sign(sessionID, secret)
}

// VerifyValue checks a cookie value's signature and returns the embedded
// session ID.
func VerifyValue(value, secret string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(sign(id, secret))) {
		return "", false
	}
	return id, true
}

// SetCookie issues the session cookie: httpOnly, SameSite=Lax, Secure in
// production.
func SetCookie(c *gin.Context, sessionID, secret string, maxAge int, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, SignValue(sessionID, secret), maxAge, "/", "", secure, true)
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}

func sign(sessionID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
