// Package client is the HTTP/JSON transport to the password-manager
// backend: the authentication service, the password-record service and the
// user service.
//
// # Overview
//
// Client is the transport-agnostic contract; HTTPClient implements it over
// net/http. Every request carries Accept/Content-Type application/json and a
// fresh X-Request-ID. Calls other than Register and Login take the bearer
// token explicitly, so callers always know which token a failure belongs to.
//
// # Error Handling
//
// Failures are mapped exactly once, in mapError, to an *Error whose Kind is
// one of a closed set. Callers match with errors.Is against the sentinels
// (ErrSessionExpired, ErrNotFound, ...). A 401 on a request that carried a
// token is ErrSessionExpired; on Register/Login it is ErrAuthenticationFailed.
// The server's {"message": ...} body is kept in Error.Message.
//
// The transport never retries and holds no session state.
package client
