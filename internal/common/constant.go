// Package common contains shared constants and sentinel errors used across
// gophsocial components.
package common

const (
	// AuthorizationHeader carries the bearer credential on outbound requests.
	AuthorizationHeader = "Authorization"

	// BearerScheme prefixes the credential inside AuthorizationHeader.
	BearerScheme = "Bearer"

	// RequestIDHeader tags every outbound request for server-side correlation.
	RequestIDHeader = "X-Request-ID"

	// CredentialKey is the fixed name of the durable credential slot.
	CredentialKey = "access_token"
)
