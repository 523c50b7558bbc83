// Package token bridges server-side sessions and the bearer tokens they
// hold for the upstream API. The bridge only mutates session state and
// reads token claims locally; it never contacts the network.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"boardfront/internal/session"
)

// ExpirySkew is the clock-skew margin: a token this close to its expiry
// is treated as already expired so a call is never dispatched with a
// token that dies in flight.
const ExpirySkew = 5 * time.Second

// Bridge resolves, stores and expiry-checks the access token held by a
// session.
type Bridge struct {
	now func() time.Time
}

// NewBridge creates a token bridge using the wall clock.
func NewBridge() *Bridge {
	return &Bridge{now: time.Now}
}

// NewBridgeWithClock creates a token bridge with an injected clock.
func NewBridgeWithClock(now func() time.Time) *Bridge {
	return &Bridge{now: now}
}

// Get returns the session's current bearer token, or "" if absent.
func (b *Bridge) Get(sess *session.Session) string {
	if sess == nil {
		return ""
	}
	return sess.AccessToken
}

// Set overwrites the session's token and records the issue time.
// The caller is responsible for persisting the session afterwards.
func (b *Bridge) Set(sess *session.Session, tok string) {
	sess.AccessToken = tok
	sess.TokenIssuedAt = b.now()
}

// Clear removes the token and identity fields, leaving the session inert.
func (b *Bridge) Clear(sess *session.Session) {
	sess.AccessToken = ""
	sess.TokenIssuedAt = time.Time{}
	sess.UserID = ""
	sess.Email = ""
	sess.Nickname = ""
	sess.ProfileImage = nil
}

// IsExpired decodes the token's claims without verifying the signature
// and reports whether the token is expired within the skew margin.
// Undecodable tokens are treated as expired (fail closed); tokens
// without an exp claim never expire locally.
//
// The decoded exp is only a local hint to pre-empt known-dead calls; the
// upstream re-validates the signature on every request, so this result
// is never used for authorization decisions.
func (b *Bridge) IsExpired(tok string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		return false
	}

	return exp.Time.Sub(b.now()) <= ExpirySkew
}
