package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
)

// fakeSession records calls and answers with canned values. Failing calls
// set lastError the way the real manager does.
type fakeSession struct {
	state models.State

	restoreErr error

	loginEmail, loginPass string
	loginErr              error
	loginIdentity         *models.Identity

	registered  *models.RegisterRequest
	registerErr error

	logoutCalls int

	update    *models.ProfileUpdate
	updateErr error

	uploadName string
	uploadBody string
	uploadRef  string
	uploadErr  error

	refreshCalls int

	verifyToken string
	verifyErr   error

	resetEmail        string
	resetToken        string
	resetPassword     string
	resetErr          error
	requestRequestErr error
}

func (f *fakeSession) fail(err error, msg string) error {
	if err != nil {
		f.state.LastError = msg
	}
	return err
}

func (f *fakeSession) State() models.State { return f.state }

func (f *fakeSession) RestoreSession(context.Context) error {
	if f.restoreErr != nil {
		f.state.Status = models.StatusAnonymous
		return f.restoreErr
	}
	if f.state.Status == models.StatusUnknown {
		f.state.Status = models.StatusAnonymous
	}
	return nil
}

func (f *fakeSession) Login(_ context.Context, email, password string) error {
	f.loginEmail, f.loginPass = email, password
	if f.loginErr != nil {
		return f.fail(f.loginErr, "Incorrect username or password")
	}
	f.state.Status = models.StatusAuthenticated
	f.state.Identity = f.loginIdentity
	return nil
}

func (f *fakeSession) Register(_ context.Context, req models.RegisterRequest) error {
	f.registered = &req
	return f.fail(f.registerErr, "Email already registered")
}

func (f *fakeSession) Logout(context.Context) {
	f.logoutCalls++
	f.state = models.State{Status: models.StatusAnonymous}
}

func (f *fakeSession) UpdateProfile(_ context.Context, upd models.ProfileUpdate) error {
	f.update = &upd
	return f.fail(f.updateErr, "Failed to update profile")
}

func (f *fakeSession) UploadProfilePicture(_ context.Context, filename string, r io.Reader) (string, error) {
	b, _ := io.ReadAll(r)
	f.uploadName, f.uploadBody = filename, string(b)
	if f.uploadErr != nil {
		return "", f.fail(f.uploadErr, "Failed to upload profile picture")
	}
	return f.uploadRef, nil
}

func (f *fakeSession) RefreshIdentity(context.Context) error {
	f.refreshCalls++
	return nil
}

func (f *fakeSession) VerifyEmail(_ context.Context, token string) error {
	f.verifyToken = token
	return f.fail(f.verifyErr, "Invalid or expired verification token")
}

func (f *fakeSession) RequestPasswordReset(_ context.Context, email string) error {
	f.resetEmail = email
	return f.fail(f.requestRequestErr, "Failed to request password reset")
}

func (f *fakeSession) ResetPassword(_ context.Context, token, newPassword string) error {
	f.resetToken, f.resetPassword = token, newPassword
	return f.fail(f.resetErr, "Invalid or expired reset token")
}

func newTestApp(s sessionService, input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &App{
		session: s,
		logger:  logging.Discard(),
		reader:  bufio.NewReader(strings.NewReader(input)),
		out:     out,
	}, out
}

// stubPasswords makes getPassword return the given answers in order.
func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := getPassword
	i := 0
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if i >= len(answers) {
			return nil, io.EOF
		}
		pw := []byte(answers[i])
		i++
		return pw, nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}
