// Package cli provides the interactive gophsocial terminal client.
//
// It wires configuration, the SQLite credential slot, the HTTP transport and
// the session manager, then runs a REPL. The REPL plays the role of the UI:
// it collects form input, shows the current view (login, dashboard,
// registration notice) and reports LastError after failed operations.
//
// Commands:
//   - register, login, logout
//   - whoami, profile, avatar <path>
//   - verify <token>, forgot, reset <token>
//   - status, help, exit
//
// The REPL is started via App.Run(ctx), which restores the stored session
// first and blocks until the user exits.
package cli
