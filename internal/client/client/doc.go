// Package client is the transport layer of the gophsocial client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     remote REST API: Login/Register, e-mail verification, password reset,
//     profile read/update and profile-picture upload.
//  2. A concrete HTTP implementation (see HTTPClient) whose RoundTripper
//     attaches the stored bearer credential to every request and, when a
//     credentialed request comes back 401, runs the teardown before the error
//     is returned to the caller. It never retries and never refreshes tokens.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database with embedded goose migrations.
//
// # Error Handling
//
// Errors map onto four kinds and are matched with errors.Is / errors.As:
// ErrUnauthorized (any 401), *APIError (server-side rejection with a
// human-readable Detail), ErrUnavailable (the call did not complete) and
// ErrCredentialStore (the credential slot could not be read).
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context and honor its cancellation; the configured request timeout
// is the only other deadline.
package client
