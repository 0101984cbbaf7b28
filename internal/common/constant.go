// Package common contains constants and byte helpers shared by the client
// packages.
package common

// HTTP header names and values used on outbound API requests.
const (
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "
	RequestIDHeaderName     = "X-Request-ID"
	ContentTypeJSON         = "application/json"
)

// Keys of the local metadata table holding session state.
const (
	MetadataKeyToken     = "token"
	MetadataKeyUserID    = "user_id"
	MetadataKeyUser      = "user"
	MetadataKeyStoreSalt = "store_salt"
)
