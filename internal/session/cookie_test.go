package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	value := SignValue("session-123", "secret")
	assert.True(t, strings.HasPrefix(value, "session-123."))

	id, ok := VerifyValue(value, "secret")
	require.True(t, ok)
	assert.Equal(t, "session-123", id)
}

func TestVerify_WrongSecret(t *testing.T) {
	value := SignValue("session-123", "secret")

	_, ok := VerifyValue(value, "other-secret")
	assert.False(t, ok)
}

func TestVerify_TamperedID(t *testing.T) {
	value := SignValue("session-123", "secret")
	_, sig, _ := strings.Cut(value, ".")

	_, ok := VerifyValue("session-456."+sig, "secret")
	assert.False(t, ok)
}

func TestVerify_Malformed(t *testing.T) {
	for _, v := range []string{"", "no-separator", ".sig-only", "id."} {
		_, ok := VerifyValue(v, "secret")
		assert.False(t, ok, "value %q", v)
	}
}

func TestSetCookie_Attributes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	SetCookie(c, "session-123", "secret", 86400, true)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	ck := cookies[0]
	assert.Equal(t, CookieName, ck.Name)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, 86400, ck.MaxAge)

	id, ok := VerifyValue(ck.Value, "secret")
	require.True(t, ok)
	assert.Equal(t, "session-123", id)
}

func TestClearCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	ClearCookie(c, false)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
	assert.Empty(t, cookies[0].Value)
}
