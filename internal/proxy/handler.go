// Package proxy forwards board, comment, like and user requests to the
// upstream API, attaching the bearer token bridged from the session.
// Responses pass through unchanged except for the documented error
// translations (unreachable → 503, empty error bodies, owner-only
// messages on 403).
package proxy

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"boardfront/internal/auth"
	"boardfront/internal/session"
	"boardfront/internal/token"
	"boardfront/internal/upstream"
)

// Handler dispatches proxied requests to the upstream.
type Handler struct {
	upstream *upstream.Client
	bridge   *token.Bridge
	sessions session.Manager
}

// NewHandler creates a new proxy handler
func NewHandler(up *upstream.Client, bridge *token.Bridge, sessions session.Manager) *Handler {
	return &Handler{
		upstream: up,
		bridge:   bridge,
		sessions: sessions,
	}
}

// PostRequest is the payload for creating or editing a post
type PostRequest struct {
	Title    string `json:"title"`
	Contents string `json:"contents"`
}

// CommentRequest is the payload for creating or editing a comment
type CommentRequest struct {
	Contents string `json:"contents"`
}

// UpdateUserRequest is the payload for PUT /users/:userId. The image may
// arrive under either key; "image" takes precedence. Both are tri-state.
type UpdateUserRequest struct {
	Nickname     auth.OptionalString `json:"nickname"`
	ProfileImage auth.OptionalString `json:"profileImage"`
	Image        auth.OptionalString `json:"image"`
}

// ListPosts handles GET /boards. Public, but the bearer token rides
// along when the session has one. Pagination passes through unmodified.
func (h *Handler) ListPosts(c *gin.Context) {
	page := c.DefaultQuery("page", "0")
	size := c.DefaultQuery("size", "10")

	resp, err := h.upstream.Do(c.Request.Context(), http.MethodGet, "/boards", nil, upstream.Options{
		Authorization: h.bearer(c),
		Query:         url.Values{"page": {page}, "size": {size}},
	})
	h.relay(c, resp, err)
}

// GetPost handles GET /boards/:postId
func (h *Handler) GetPost(c *gin.Context) {
	resp, err := h.upstream.Do(c.Request.Context(), http.MethodGet, "/boards/"+c.Param("postId"), nil, upstream.Options{
		Authorization: h.bearer(c),
	})
	h.relay(c, resp, err)
}

// CreatePost handles POST /boards
func (h *Handler) CreatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.Contents == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title and contents are required"})
		return
	}

	resp, err := h.upstream.Do(c.Request.Context(), http.MethodPost, "/boards", req, upstream.Options{
		Authorization: h.bearer(c),
	})
	h.relay(c, resp, err)
}

// UpdatePost handles PUT /boards/:postId
func (h *Handler) UpdatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	resp, err := h.upstream.Do(c.Request.Context(), http.MethodPut, "/boards/"+c.Param("postId"), req, upstream.Options{
		Authorization: h.bearer(c),
	})
	if err == nil && resp.StatusCode == http.StatusForbidden {
		c.JSON(http.StatusForbidden, gin.H{
			"message": resp.Message("only the author can edit this post"),
			"code":    "FORBIDDEN",
		})
		return
	}
	h.relay(c, resp, err)
}

// DeletePost handles DELETE /boards/:postId. Cookies travel along for
// upstream session affinity; 401/403 keep their upstream codes so the
// client can tell refresh-needed from forbidden.
func (h *Handler) DeletePost(c *gin.Context) {
	resp, err := h.upstream.Do(c.Request.Context(), http.MethodDelete, "/boards/"+c.Param("postId"), nil, upstream.Options{
		Authorization: h.bearer(c),
		Cookie:        c.GetHeader("Cookie"),
	})
	if err == nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": resp.Message("authentication required"),
				"code":    resp.Code("UNAUTHORIZED"),
			})
			return
		case http.StatusForbidden:
			c.JSON(http.StatusForbidden, gin.H{
				"message": resp.Message("only the author can delete this post"),
				"code":    "FORBIDDEN",
			})
			return
		}
	}
	h.relay(c, resp, err)
}

// ToggleLike handles POST /boards/:postId/likes
func (h *Handler) ToggleLike(c *gin.Context) {
	path := fmt.Sprintf("/boards/%s/likes", c.Param("postId"))
	resp, err := h.upstream.Do(c.Request.Context(), http.MethodPost, path, map[string]any{}, upstream.Options{
		Authorization: h.bearer(c),
		Cookie:        c.GetHeader("Cookie"),
	})
	h.relay(c, resp, err)
}

// ListComments handles GET /comments/:postId. The upstream nests
// comments under the board resource.
func (h *Handler) ListComments(c *gin.Context) {
	path := fmt.Sprintf("/boards/%s/comments", c.Param("postId"))
	resp, err := h.upstream.Do(c.Request.Context(), http.MethodGet, path, nil, upstream.Options{
		Authorization: h.bearer(c),
	})
	h.relay(c, resp, err)
}

// CreateComment handles POST /comments/:postId
func (h *Handler) CreateComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Contents == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "contents is required"})
		return
	}

	path := fmt.Sprintf("/boards/%s/comments", c.Param("postId"))
	resp, err := h.upstream.Do(c.Request.Context(), http.MethodPost, path, req, upstream.Options{
		Authorization: h.bearer(c),
	})
	h.relay(c, resp, err)
}

// UpdateComment handles PUT /comments/:postId/:commentId
func (h *Handler) UpdateComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	path := fmt.Sprintf("/boards/%s/comments/%s", c.Param("postId"), c.Param("commentId"))
	resp, err := h.upstream.Do(c.Request.Context(), http.MethodPut, path, req, upstream.Options{
		Authorization: h.bearer(c),
	})
	h.relay(c, resp, err)
}

// DeleteComment handles DELETE /comments/:postId/:commentId
func (h *Handler) DeleteComment(c *gin.Context) {
	path := fmt.Sprintf("/boards/%s/comments/%s", c.Param("postId"), c.Param("commentId"))
	resp, err := h.upstream.Do(c.Request.Context(), http.MethodDelete, path, nil, upstream.Options{
		Authorization: h.bearer(c),
	})
	h.relay(c, resp, err)
}

// GetUser handles GET /users/:userId. Public profile lookup; the
// response is normalized so the client always sees the same field names
// whichever shape the upstream used.
func (h *Handler) GetUser(c *gin.Context) {
	resp, err := h.upstream.Do(c.Request.Context(), http.MethodGet, "/users/"+c.Param("userId"), nil, upstream.Options{
		Authorization: h.bearer(c),
	})
	if err != nil || !resp.OK() {
		h.relay(c, resp, err)
		return
	}

	data := resp.JSON()
	if data == nil {
		h.relay(c, resp, nil)
		return
	}

	img := auth.NormalizeImage(data["image"], data["profileImage"])
	userID := data["userId"]
	if userID == nil {
		userID = data["id"]
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":       userID,
		"nickname":     data["nickname"],
		"profileImage": img,
		"image":        img,
	})
}

// UpdateUser handles PUT /users/:userId. Only the session owner may
// update their own record; the tri-state image semantics match
// /auth/update.
func (h *Handler) UpdateUser(c *gin.Context) {
	sess := session.FromContext(c)
	if sess == nil || sess.UserID != c.Param("userId") {
		c.JSON(http.StatusForbidden, gin.H{"message": "you can only update your own profile"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	payload := map[string]any{}
	if req.Nickname.Present {
		payload["nickname"] = req.Nickname.Payload()
	}
	image := req.Image
	if !image.Present {
		image = req.ProfileImage
	}
	if image.Present {
		payload["image"] = image.Payload()
	}

	resp, err := h.upstream.Do(c.Request.Context(), http.MethodPut, "/users/"+c.Param("userId"), payload, upstream.Options{
		Authorization: h.bearer(c),
	})
	if err != nil || !resp.OK() {
		if err == nil {
			c.JSON(resp.StatusCode, gin.H{"message": resp.Message("profile update failed")})
			return
		}
		h.relay(c, resp, err)
		return
	}

	data := resp.JSON()
	if nick, ok := data["nickname"].(string); ok && nick != "" {
		sess.Nickname = nick
	}
	switch {
	case image.Clears():
		sess.ProfileImage = nil
	case image.Present:
		sess.ProfileImage = auth.NormalizeImage(data["image"], data["profileImage"])
	}
	if err := h.sessions.Save(c.Request.Context(), sess); err != nil {
		slog.Error("Failed to save session after user update", "session_id", sess.ID, "error", err)
	}

	user := data["user"]
	if user == nil {
		user = data
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated", "user": user})
}

// bearer resolves the Authorization header for the current request, or
// "" when the session carries no token.
func (h *Handler) bearer(c *gin.Context) string {
	tok := h.bridge.Get(session.FromContext(c))
	if tok == "" {
		return ""
	}
	return "Bearer " + tok
}

// relay writes the upstream outcome to the client: 503 on unreachable,
// 204/empty passthrough, empty error bodies replaced with a message,
// everything else verbatim.
func (h *Handler) relay(c *gin.Context, resp *upstream.Response, err error) {
	if err != nil {
		if errors.Is(err, upstream.ErrUnreachable) {
			slog.Warn("Upstream unreachable", "path", c.Request.URL.Path, "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "upstream server unavailable"})
			return
		}
		slog.Error("Upstream request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "upstream request failed"})
		return
	}

	if resp.StatusCode == http.StatusNoContent || resp.IsEmpty() {
		if resp.StatusCode >= http.StatusBadRequest {
			c.JSON(resp.StatusCode, gin.H{
				"message": "upstream returned an error with no response body",
				"status":  resp.StatusCode,
			})
			return
		}
		c.Status(resp.StatusCode)
		return
	}

	c.Data(resp.StatusCode, "application/json; charset=utf-8", resp.Body)
}
