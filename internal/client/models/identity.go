// Package models defines client-side data models shared by the transport,
// the session manager and the CLI.
package models

// Identity is the authenticated user's profile snapshot as returned by
// GET /users/me. It is replaced wholesale on every fetch or update; callers
// that need to keep a copy should use Clone.
type Identity struct {
	ID             int64   `json:"id"`
	Email          string  `json:"email"`
	Username       string  `json:"username"`
	FullName       *string `json:"full_name,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	EmailVerified  bool    `json:"email_verified"`
}

// Clone returns a deep copy of i. A nil receiver yields nil.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	c.FullName = cloneString(i.FullName)
	c.Bio = cloneString(i.Bio)
	c.ProfilePicture = cloneString(i.ProfilePicture)
	return &c
}

// DisplayName prefers the full name and falls back to the username.
func (i *Identity) DisplayName() string {
	if i.FullName != nil && *i.FullName != "" {
		return *i.FullName
	}
	return i.Username
}

// RegisterRequest is the body of POST /auth/register. Field validation is the
// caller's job; the values are sent as given.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password"`
}

// ProfileUpdate is the body of PUT /users/me. Nil fields are left out of the
// request and therefore unchanged on the server.
type ProfileUpdate struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

// String returns a pointer to s, for building ProfileUpdate literals.
func String(s string) *string {
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
