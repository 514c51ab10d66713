package session

import "errors"

var (
	// ErrNotAuthenticated is returned by operations that need a session when
	// there is none. No remote call is made.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionChanged is returned when another operation committed a new
	// session state while this one was waiting on the server. The result of
	// the superseded operation is discarded.
	ErrSessionChanged = errors.New("session changed during operation")
)

// Fallback messages stored in LastError when the server gives no reason.
const (
	msgRestoreFailed       = "Session expired, please log in again"
	msgLoginFailed         = "Login failed"
	msgRegisterFailed      = "Registration failed"
	msgUpdateFailed        = "Failed to update profile"
	msgUploadFailed        = "Failed to upload profile picture"
	msgRefreshFailed       = "Failed to load profile"
	msgVerifyFailed        = "Failed to verify email"
	msgResetRequestFailed  = "Failed to request password reset"
	msgResetPasswordFailed = "Failed to reset password"
	msgNotAuthenticated    = "Not authenticated"
)
