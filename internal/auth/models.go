package auth

import "encoding/json"

// LoginRequest is the request payload for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest is the request payload for registering a new account.
// ProfileImage is optional; when present it is forwarded to the upstream
// under its "image" field name.
type SignupRequest struct {
	Email        string  `json:"email" binding:"required,email"`
	Password     string  `json:"password" binding:"required"`
	Nickname     string  `json:"nickname" binding:"required"`
	ProfileImage *string `json:"profileImage"`
}

// ChangePasswordRequest is the request payload for changing the password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateProfileRequest is the request payload for profile updates.
// Both fields are tri-state: an absent key means "leave unchanged",
// which must never collapse into a delete.
type UpdateProfileRequest struct {
	Nickname OptionalString `json:"nickname"`
	Image    OptionalString `json:"image"`
}

// OptionalString distinguishes the three wire states of an optional
// string field: absent (no change), null or "" (explicit delete), and a
// value (replace). encoding/json only invokes UnmarshalJSON when the key
// is present, so Present is the key-existence flag.
type OptionalString struct {
	Present bool
	Null    bool
	Value   string
}

// UnmarshalJSON implements json.Unmarshaler
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Clears reports whether the field was an explicit delete (present and
// null or empty).
func (o OptionalString) Clears() bool {
	return o.Present && (o.Null || o.Value == "")
}

// Sets reports whether the field carries a replacement value.
func (o OptionalString) Sets() bool {
	return o.Present && !o.Null && o.Value != ""
}

// Payload returns the value to forward upstream, preserving null.
func (o OptionalString) Payload() any {
	if o.Null {
		return nil
	}
	return o.Value
}
