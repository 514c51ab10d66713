// Package session is the single authority for "who is logged in".
//
// A Manager owns the in-memory session state and, together with the HTTP
// transport, the durable credential slot. It is constructed once per process
// and handed to whatever needs it; there is no package-level instance.
//
// Every state change goes through the Manager's mutex. Remote calls are made
// without holding it: an operation records the session generation when it
// starts and commits its result only if no other commit (login, logout,
// teardown, restore) happened in between. A loser gets ErrSessionChanged and
// leaves the state alone, so a teardown is never undone by a late response.
package session
