package session

import "time"

// Session is the server-side record for an authenticated browser.
// The browser only ever holds the signed session ID cookie; the access
// token for the upstream API never leaves this record.
type Session struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	Nickname      string    `json:"nickname"`
	ProfileImage  *string   `json:"profile_image"`
	AccessToken   string    `json:"access_token,omitempty"`
	TokenIssuedAt time.Time `json:"token_issued_at,omitzero"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}
