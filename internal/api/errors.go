package api

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for request outcomes the UI distinguishes.
var (
	ErrNoAccount    = errors.New("api: no account configured")
	ErrUnauthorized = errors.New("api: unauthorized (401/403)")
	ErrRateLimited  = errors.New("api: rate limited (429)")
	ErrMalformed    = errors.New("api: malformed response")
	ErrTooLarge     = errors.New("api: response too large")
)

// StatusError is returned for any other non-2xx response.
type StatusError struct {
	Code int
	Path string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: unexpected status %d from %s", e.Code, e.Path)
}

// ErrorKind classifies a fetch failure for display.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindNoAccount
	KindUnauthorized
	KindRateLimited
	KindMalformed
	KindTooLarge
	KindStatus
	KindTimeout
	KindCanceled
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindNoAccount:
		return "no account"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate limited"
	case KindMalformed:
		return "malformed response"
	case KindTooLarge:
		return "response too large"
	case KindStatus:
		return "http error"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return "network error"
	}
}

// Kind maps an error returned by Client to its ErrorKind.
func Kind(err error) ErrorKind {
	var se *StatusError
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNoAccount):
		return KindNoAccount
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	case errors.Is(err, ErrTooLarge):
		return KindTooLarge
	case errors.As(err, &se):
		return KindStatus
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindNetwork
	}
}

// Message is a short, user-facing description of err.
func Message(err error) string {
	var se *StatusError
	switch Kind(err) {
	case KindNone:
		return ""
	case KindNoAccount:
		return "No account configured. Run `finburn setup` or set FINBURN_ACCOUNT_ID."
	case KindUnauthorized:
		return "The server refused the request (unauthorized)."
	case KindRateLimited:
		return "Rate limited by the server. Try again shortly."
	case KindMalformed:
		return "The server returned data in an unexpected shape."
	case KindTooLarge:
		return "The server response was too large to load."
	case KindStatus:
		errors.As(err, &se)
		return fmt.Sprintf("Server error (HTTP %d).", se.Code)
	case KindTimeout:
		return "The request timed out."
	case KindCanceled:
		return "The request was canceled."
	default:
		return "Could not reach the server."
	}
}
