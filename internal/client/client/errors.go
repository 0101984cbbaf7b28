package client

import (
	"errors"
	"fmt"
)

// Kind classifies every failure surfaced by the client. The set is closed.
type Kind int

const (
	KindUnknown Kind = iota
	KindAuthenticationRequired
	KindAuthenticationFailed
	KindSessionExpired
	KindNotFound
	KindInvalidRequest
	KindForbidden
	KindServer
	KindNetwork
)

var (
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrSessionExpired         = errors.New("session expired")
	ErrNotFound               = errors.New("not found")
	ErrInvalidRequest         = errors.New("invalid request")
	ErrForbidden              = errors.New("forbidden")
	ErrServer                 = errors.New("server error")
	ErrNetwork                = errors.New("network error")
)

var kindSentinels = map[Kind]error{
	KindAuthenticationRequired: ErrAuthenticationRequired,
	KindAuthenticationFailed:   ErrAuthenticationFailed,
	KindSessionExpired:         ErrSessionExpired,
	KindNotFound:               ErrNotFound,
	KindInvalidRequest:         ErrInvalidRequest,
	KindForbidden:              ErrForbidden,
	KindServer:                 ErrServer,
	KindNetwork:                ErrNetwork,
}

func (k Kind) String() string {
	if s, ok := kindSentinels[k]; ok {
		return s.Error()
	}
	return "unknown"
}

// Error is the single error type returned by the transport. It matches its
// kind's sentinel with errors.Is.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

// NewError builds an Error of the given kind with a user-facing message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for k, s := range kindSentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	return KindUnknown
}

// Message returns the user-facing text of err: the server supplied message
// when there is one, else the kind.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Message != "" {
			return e.Message
		}
		return e.Kind.String()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
