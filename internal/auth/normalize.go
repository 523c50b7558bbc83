package auth

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidResponseShape is returned when no user identifier can be
// extracted from an upstream response.
var ErrInvalidResponseShape = errors.New("invalid upstream response shape")

// Identity is the normalized result of an upstream auth response.
type Identity struct {
	UserID       string
	Email        string
	Nickname     string
	ProfileImage *string
	AccessToken  string
}

// ExtractIdentity normalizes the upstream login response. The upstream
// has shipped several shapes over time, so extraction works over a
// closed candidate list in priority order and never guesses beyond it:
//
//	user ID:  user.userId, user.id, userId
//	email:    user.email, email
//	nickname: user.nickname, nickname
//	image:    user.image, user.profileImage, image, profileImage
//	token:    accessToken, token
//
// where "user.x" reads from the user sub-object when present and plain
// names read from the top level. A missing user ID fails extraction.
func ExtractIdentity(data map[string]any) (Identity, error) {
	if data == nil {
		return Identity{}, ErrInvalidResponseShape
	}

	userData := data
	if sub, ok := data["user"].(map[string]any); ok {
		userData = sub
	}

	userID := firstString(userData["userId"], userData["id"], data["userId"])
	if userID == "" {
		return Identity{}, ErrInvalidResponseShape
	}

	return Identity{
		UserID:       userID,
		Email:        firstString(userData["email"], data["email"]),
		Nickname:     firstString(userData["nickname"], data["nickname"]),
		ProfileImage: NormalizeImage(userData["image"], userData["profileImage"], data["image"], data["profileImage"]),
		AccessToken:  firstString(data["accessToken"], data["token"]),
	}, nil
}

// NormalizeImage picks the first candidate and collapses the upstream's
// three spellings of "no image" (absent, "", the literal "null") into nil.
func NormalizeImage(candidates ...any) *string {
	for _, v := range candidates {
		if v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s == "" || s == "null" {
			return nil
		}
		return &s
	}
	return nil
}

// SanitizeImage additionally rejects values that are not a plausible
// image reference (data URI, absolute URL, or server path).
func SanitizeImage(img *string) *string {
	if img == nil {
		return nil
	}
	s := strings.TrimSpace(*img)
	if s == "" || s == "null" {
		return nil
	}
	for _, prefix := range []string{"data:image/", "http://", "https://", "/"} {
		if strings.HasPrefix(s, prefix) {
			return &s
		}
	}
	return nil
}

// firstString returns the first candidate representable as a non-empty
// string. JSON numbers (float64 after decoding) are formatted without a
// fractional part so numeric user IDs round-trip as "5", not "5.000000".
func firstString(candidates ...any) string {
	for _, v := range candidates {
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case int:
			return strconv.Itoa(t)
		}
	}
	return ""
}
