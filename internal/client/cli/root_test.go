package cli

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophsocial/internal/client/session"
	"github.com/stretchr/testify/assert"
)

func TestGetStatus_Empty(t *testing.T) {
	a, _ := newTestApp(&fakeSession{}, "")
	assert.Equal(t, "", a.getStatus())
}

func TestGetStatus_RouteOnly(t *testing.T) {
	a, _ := newTestApp(&fakeSession{}, "")
	a.route = session.RouteLogin
	assert.Equal(t, "(/login)", a.getStatus())
}

func TestGetStatus_WithUsername(t *testing.T) {
	a, _ := newTestApp(loggedIn(), "")
	a.route = session.RouteDashboard
	assert.Equal(t, "(alice /dashboard)", a.getStatus())
}

func TestRoot_DrivesCommandsFromAppInput(t *testing.T) {
	silencePrintln(t)
	stubPasswords(t, "secret")

	f := loggedIn()
	f.state.Status = "anonymous"
	f.state.Identity = nil
	f.loginIdentity = loggedIn().state.Identity

	// The login command reads its form from the same input as the REPL.
	a, out := newTestApp(f, "login\nalice\nwhoami\nexit\n")
	a.Root(context.Background())

	assert.Equal(t, "alice", f.loginEmail)
	assert.Contains(t, out.String(), "Username:  alice")
}
