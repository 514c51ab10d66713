package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

// Client is the remote API as seen by the session manager and the CLI.
// Every call carries the stored bearer credential when one exists.
type Client interface {
	// Login exchanges email/password for an access token. The token is
	// returned, not stored; persisting it is the caller's decision.
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, req models.RegisterRequest) error
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	GetProfile(ctx context.Context) (*models.Identity, error)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.Identity, error)
	// UploadProfilePicture sends the image bytes and returns the reference
	// (usually a URL) the server assigned to it.
	UploadProfilePicture(ctx context.Context, filename string, r io.Reader) (string, error)
	// SetUnauthorizedHandler registers the observer that performs teardown
	// when a credentialed request is rejected with 401.
	SetUnauthorizedHandler(h UnauthorizedHandler)
	Close() error
}

// UnauthorizedHandler is notified, before the error reaches the caller, that
// the server rejected token. Implementations must clear the credential slot
// (when it still holds token) and drop any state derived from it.
type UnauthorizedHandler interface {
	HandleUnauthorized(ctx context.Context, token string)
}

// UnauthorizedHandlerFunc adapts a function to UnauthorizedHandler.
type UnauthorizedHandlerFunc func(ctx context.Context, token string)

func (f UnauthorizedHandlerFunc) HandleUnauthorized(ctx context.Context, token string) {
	f(ctx, token)
}

type ctxKey string

const (
	credentialKey ctxKey = "credential"
	exemptKey     ctxKey = "teardown_exempt"
)

// WithCredential makes requests issued with the returned context carry token
// instead of the stored credential. The session manager uses it to fetch the
// identity for a token it has not committed yet.
func WithCredential(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, credentialKey, token)
}

func credentialFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(credentialKey).(string)
	return token, ok
}

// withoutTeardown marks a request whose 401 is a domain answer (wrong
// password on the credential exchange) rather than a rejected session.
func withoutTeardown(ctx context.Context) context.Context {
	return context.WithValue(ctx, exemptKey, true)
}

func teardownExempt(ctx context.Context) bool {
	v, _ := ctx.Value(exemptKey).(bool)
	return v
}
