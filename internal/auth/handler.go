// Package auth implements the authentication gateway: it proxies
// login/signup/refresh and profile operations to the upstream API and
// maps the responses into server-side session state. The browser only
// ever sees the session cookie; bearer tokens stay in the session.
package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"boardfront/internal/session"
	"boardfront/internal/token"
	"boardfront/internal/upstream"
)

// Config carries the cookie parameters the handler issues sessions with.
type Config struct {
	CookieSecret  string
	SessionMaxAge int
	SecureCookies bool
}

// Handler handles authentication-related HTTP requests
type Handler struct {
	upstream *upstream.Client
	sessions session.Manager
	bridge   *token.Bridge
	cfg      Config
}

// NewHandler creates a new authentication handler
func NewHandler(up *upstream.Client, sessions session.Manager, bridge *token.Bridge, cfg Config) *Handler {
	return &Handler{
		upstream: up,
		sessions: sessions,
		bridge:   bridge,
		cfg:      cfg,
	}
}

// Login handles POST /auth/login. It authenticates against the upstream,
// normalizes the identity out of whatever response shape the upstream
// used, and persists the session before responding.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	resp, err := h.upstream.Do(c.Request.Context(), http.MethodPost, "/auth/login", req, upstream.Options{})
	if err != nil {
		h.upstreamError(c, err, "login failed")
		return
	}
	if !resp.OK() {
		c.JSON(resp.StatusCode, gin.H{"message": resp.Message("login failed")})
		return
	}

	ident, err := ExtractIdentity(resp.JSON())
	if err != nil {
		slog.Error("Login response missing user identifier", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "invalid login response from upstream"})
		return
	}

	sess := &session.Session{
		UserID:       ident.UserID,
		Email:        ident.Email,
		Nickname:     ident.Nickname,
		ProfileImage: ident.ProfileImage,
	}
	if ident.AccessToken != "" {
		h.bridge.Set(sess, ident.AccessToken)
	}

	sessionID, err := h.sessions.Create(c.Request.Context(), sess, h.cfg.SessionMaxAge)
	if err != nil {
		slog.Error("Failed to persist session after login", "user_id", ident.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to save session"})
		return
	}

	session.SetCookie(c, sessionID, h.cfg.CookieSecret, h.cfg.SessionMaxAge, h.cfg.SecureCookies)
	c.JSON(http.StatusOK, gin.H{
		"message": "login successful",
		"user":    userPayload(sess),
	})
}

// Logout handles POST /auth/logout. Clearing the cookie is the
// user-visible contract: a store failure is logged but the client still
// logs out successfully.
func (h *Handler) Logout(c *gin.Context) {
	if sess := session.FromContext(c); sess != nil {
		if err := h.sessions.Delete(c.Request.Context(), sess.ID); err != nil {
			slog.Error("Failed to destroy session on logout", "session_id", sess.ID, "error", err)
		}
	}

	session.ClearCookie(c, h.cfg.SecureCookies)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Signup handles POST /auth/signup. No session is established; the user
// logs in separately afterwards. Upstream validation errors pass through
// verbatim.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email, password and nickname are required"})
		return
	}

	payload := map[string]any{
		"email":    req.Email,
		"password": req.Password,
		"nickname": req.Nickname,
	}
	// The upstream stores the image under users.image.
	if req.ProfileImage != nil {
		payload["image"] = *req.ProfileImage
	}

	resp, err := h.upstream.Do(c.Request.Context(), http.MethodPost, "/auth/signup", payload, upstream.Options{})
	if err != nil {
		h.upstreamError(c, err, "signup failed")
		return
	}
	if !resp.OK() {
		if resp.IsEmpty() {
			c.JSON(resp.StatusCode, gin.H{
				"message": "upstream returned an error with no response body",
				"status":  resp.StatusCode,
			})
			return
		}
		c.JSON(resp.StatusCode, gin.H{"message": resp.Message("signup failed")})
		return
	}

	data := resp.JSON()
	user := data["user"]
	if user == nil {
		user = data
	}
	c.JSON(http.StatusOK, gin.H{"message": "signup successful", "user": user})
}

// CheckEmail handles GET /auth/check-email?email=
func (h *Handler) CheckEmail(c *gin.Context) {
	h.checkAvailability(c, "email", "/auth/check-email")
}

// CheckNickname handles GET /auth/check-nickname?nickname=
func (h *Handler) CheckNickname(c *gin.Context) {
	h.checkAvailability(c, "nickname", "/auth/check-nickname")
}

// checkAvailability is a read-through to the upstream availability
// endpoints. On any failure it reports available:false rather than
// risking a false positive.
func (h *Handler) checkAvailability(c *gin.Context, param, path string) {
	value := c.Query(param)
	if value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": param + " is required"})
		return
	}

	resp, err := h.upstream.Do(c.Request.Context(), http.MethodGet, path, nil, upstream.Options{
		Cookie: c.GetHeader("Cookie"),
		Query:  url.Values{param: {value}},
	})
	if err != nil {
		if errors.Is(err, upstream.ErrUnreachable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"message":   "upstream server unavailable",
				"available": false,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"message":   param + " availability check failed",
			"available": false,
		})
		return
	}
	if !resp.OK() {
		c.JSON(resp.StatusCode, gin.H{
			"message":   resp.Message(param + " availability check failed"),
			"available": false,
		})
		return
	}

	c.Data(resp.StatusCode, "application/json; charset=utf-8", resp.Body)
}

// Me handles GET /auth/me: echoes the session identity without touching
// the upstream.
func (h *Handler) Me(c *gin.Context) {
	sess := session.FromContext(c)
	if sess == nil {
		c.JSON(http.StatusOK, gin.H{"isLoggedIn": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isLoggedIn":   true,
		"userId":       sess.UserID,
		"email":        sess.Email,
		"nickname":     sess.Nickname,
		"profileImage": SanitizeImage(sess.ProfileImage),
	})
}

// ChangePassword handles PUT /auth/change-password. Requires a session
// with a bearer token; the session itself is not mutated.
func (h *Handler) ChangePassword(c *gin.Context) {
	sess := session.FromContext(c)
	tok := h.bridge.Get(sess)
	if tok == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "login required"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "current and new password are required"})
		return
	}

	resp, err := h.upstream.Do(c.Request.Context(), http.MethodPut, "/auth/change-password", req, upstream.Options{
		Authorization: "Bearer " + tok,
	})
	if err != nil {
		h.upstreamError(c, err, "password change failed")
		return
	}
	if !resp.OK() {
		c.JSON(resp.StatusCode, gin.H{"message": resp.Message("password change failed")})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password changed", "data": resp.JSON()})
}

// UpdateProfile handles PUT /auth/update. The image field is tri-state:
// absent leaves the stored image alone, ""/null deletes it, a value
// replaces it. On delete the session image is cleared regardless of what
// the upstream echoes back — explicit client intent wins.
func (h *Handler) UpdateProfile(c *gin.Context) {
	sess := session.FromContext(c)
	tok := h.bridge.Get(sess)
	if sess == nil || sess.UserID == "" || tok == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "login required"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	payload := map[string]any{}
	if req.Nickname.Present {
		payload["nickname"] = req.Nickname.Payload()
	}
	if req.Image.Present {
		payload["image"] = req.Image.Payload()
	}

	resp, err := h.upstream.Do(c.Request.Context(), http.MethodPut, "/auth/update", payload, upstream.Options{
		Authorization: "Bearer " + tok,
		Cookie:        c.GetHeader("Cookie"),
	})
	if err != nil {
		h.upstreamError(c, err, "profile update failed")
		return
	}
	if !resp.OK() {
		c.JSON(resp.StatusCode, gin.H{"message": resp.Message("profile update failed")})
		return
	}

	data := resp.JSON()
	responseUser := data
	if sub, ok := data["user"].(map[string]any); ok {
		responseUser = sub
	}

	if nick, ok := responseUser["nickname"].(string); ok && nick != "" {
		sess.Nickname = nick
	}

	switch {
	case req.Image.Clears():
		sess.ProfileImage = nil
	case req.Image.Present:
		sess.ProfileImage = NormalizeImage(responseUser["image"], responseUser["profileImage"], data["image"], data["profileImage"])
	}

	if err := h.sessions.Save(c.Request.Context(), sess); err != nil {
		// The upstream already applied the change; respond anyway.
		slog.Error("Failed to save session after profile update", "session_id", sess.ID, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "profile updated", "user": responseUser})
}

// Refresh handles POST /auth/refresh. The refresh token lives in the
// browser's cookies, which are forwarded to the upstream. A 401 from the
// upstream means the refresh token itself is dead: the session is
// destroyed. A network failure keeps the session — a blip during refresh
// must not log the user out.
func (h *Handler) Refresh(c *gin.Context) {
	sess := session.FromContext(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "login required"})
		return
	}

	resp, err := h.upstream.Do(c.Request.Context(), http.MethodPost, "/auth/refresh", map[string]any{}, upstream.Options{
		Cookie: c.GetHeader("Cookie"),
	})
	if err != nil {
		h.upstreamError(c, err, "token refresh failed")
		return
	}

	if resp.StatusCode == http.StatusUnauthorized {
		slog.Info("Refresh token expired, destroying session", "session_id", sess.ID)
		h.bridge.Clear(sess)
		if err := h.sessions.Delete(c.Request.Context(), sess.ID); err != nil {
			slog.Error("Failed to destroy session after refresh rejection", "session_id", sess.ID, "error", err)
		}
		session.ClearCookie(c, h.cfg.SecureCookies)
		c.JSON(http.StatusUnauthorized, gin.H{
			"message": "session expired, please log in again",
			"code":    "REFRESH_TOKEN_EXPIRED",
		})
		return
	}
	if !resp.OK() {
		c.JSON(resp.StatusCode, gin.H{
			"message": resp.Message("token refresh failed"),
			"code":    resp.Code("REFRESH_FAILED"),
		})
		return
	}

	data := resp.JSON()
	newToken := firstString(data["accessToken"], data["token"])
	if newToken == "" {
		slog.Error("Refresh response carries no access token")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "invalid refresh response from upstream"})
		return
	}

	h.bridge.Set(sess, newToken)
	if err := h.sessions.Save(c.Request.Context(), sess); err != nil {
		slog.Error("Failed to save session after token refresh", "session_id", sess.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to save session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token refreshed", "accessToken": newToken})
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "board-front",
	})
}

func (h *Handler) upstreamError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, upstream.ErrUnreachable) {
		slog.Warn("Upstream unreachable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "upstream server unavailable"})
		return
	}
	slog.Error("Upstream request failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
}

func userPayload(sess *session.Session) gin.H {
	return gin.H{
		"userId":       sess.UserID,
		"email":        sess.Email,
		"nickname":     sess.Nickname,
		"profileImage": sess.ProfileImage,
	}
}
