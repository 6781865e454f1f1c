package apiweave

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmer misuse and configuration problems.
// Use errors.Is(err, apiweave.ErrMissingCallback) to check.
var (
	ErrMissingCallback    = errors.New("apiweave: last argument must be a completion callback")
	ErrMissingCredentials = errors.New("apiweave: client id and secret are not configured")
	ErrNoRefreshToken     = errors.New("apiweave: no refresh token is stored")
)

// Sentinels wrapped by BindError, distinguishing the two binding failure modes.
var (
	ErrMissingPathArguments     = errors.New("apiweave: missing path arguments")
	ErrMissingPayloadProperties = errors.New("apiweave: missing payload properties")
)

// BindError reports path placeholders that could not be resolved from the
// call arguments. Names are the unresolved placeholder names in template
// order, colon stripped. It wraps either ErrMissingPathArguments or
// ErrMissingPayloadProperties for errors.Is().
type BindError struct {
	Names []string
	Err   error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, strings.Join(e.Names, ", "))
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// ValidationError reports schema violations detected before any request
// was sent. One Issue per violated rule.
type ValidationError struct {
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	return "apiweave: payload validation failed: " + AggregateIssues(e.Issues)
}

// TokenError wraps the cause of a failed token acquisition or refresh.
// Op is "acquire" or "refresh".
type TokenError struct {
	Op  string
	Err error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("apiweave: token %s failed: %v", e.Op, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// TransportError wraps a connection, DNS, or TLS level failure from the
// Transport. The request never produced an HTTP status.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("apiweave: transport failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a response with a status code outside [200, 300).
// Message is taken from a "message" field in the response body when the
// server provides one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apiweave: HTTP %d: %s", e.StatusCode, e.Message)
}
