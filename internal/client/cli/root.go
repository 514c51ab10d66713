package cli

import (
	"context"
	"fmt"
)

// getStatus renders the prompt decoration: the current view and, when logged
// in, the username.
func (a *App) getStatus() string {
	s := string(a.currentRoute())
	if id := a.session.State().Identity; id != nil {
		s = id.Username + " " + s
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root runs the REPL on the app's input.
func (a *App) Root(ctx context.Context) {
	runREPL(ctx, a, a.getStatus, a.reader)
}
