package remote

import (
	"errors"
	"fmt"
)

// Sentinel errors for common HTTP error classes.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// NetworkError is a transient transport failure. Owners retry it on their own
// schedule (next poll tick, next reconnect) and never surface it as blocking.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response. Mutating calls surface it to the user
// and are not retried.
type ServerError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
}

// Unwrap maps well-known status codes onto the sentinel errors
func (e *ServerError) Unwrap() error {
	switch e.StatusCode {
	case 401:
		return ErrUnauthorized
	case 404:
		return ErrNotFound
	}
	return nil
}

// ChannelError is a push-channel failure; retried silently with backoff
type ChannelError struct {
	Op  string
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("push %s: %v", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// IsTransient reports whether err should be retried automatically
func IsTransient(err error) bool {
	var ne *NetworkError
	var ce *ChannelError
	return errors.As(err, &ne) || errors.As(err, &ce)
}
