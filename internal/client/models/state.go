package models

// Status is the authentication status part of the session state.
type Status string

const (
	// StatusUnknown is the initial state while the stored credential has not
	// been checked yet.
	StatusUnknown Status = "unknown"
	// StatusAnonymous means no credential and no identity.
	StatusAnonymous Status = "anonymous"
	// StatusAuthenticated means a credential is stored and Identity is set.
	StatusAuthenticated Status = "authenticated"
)

// State is a point-in-time snapshot of the session. Identity is non-nil
// exactly when Status is StatusAuthenticated. Loading reports whether the stored
// session is still unresolved or a session operation is in flight; LastError holds the human-readable
// reason of the most recent failed operation.
type State struct {
	Status    Status
	Identity  *Identity
	Loading   bool
	LastError string
}

// IsAuthenticated reports whether s is an authenticated state.
func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.Identity != nil
}
