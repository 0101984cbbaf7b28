package models

import "time"

// Session is the client-held pair of user identity and bearer token.
// Subject and ExpiresAt are informational, read from the token's JWT claims
// when it has them; they are never used to expire the session locally.
type Session struct {
	UserID    ID
	Token     string
	Subject   string
	ExpiresAt time.Time
}

// Valid reports whether both halves of the session are present.
func (s Session) Valid() bool {
	return s.Token != "" && !s.UserID.IsZero()
}
