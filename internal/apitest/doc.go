// Package apitest is an in-process stand-in for the remote REST API the
// client talks to. It keeps users in memory, hashes passwords with bcrypt and
// issues HS256 JWT access tokens, and answers errors with FastAPI-style
// {"detail": "..."} bodies.
//
// Besides serving the routes it lets tests seed users, revoke tokens, read the
// "outbox" of verification and reset tokens, inject failures, hold a route
// until released, and inspect what the client sent.
package apitest
