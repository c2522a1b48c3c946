package planner

import "fmt"

// AuthError means an account has no usable token, the token refresh failed,
// or the remote service rejected the credentials.
type AuthError struct {
	Account AccountKind
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed for %s account: %v", e.Account, e.Err)
	}
	return fmt.Sprintf("authentication failed for %s account", e.Account)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NetworkError wraps a transport-level failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the calendar service.
type APIError struct {
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("calendar service returned status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Err }

// DecodeError marks a malformed cache payload. It never reaches consumers;
// the cache treats it as a miss and purges the entry.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed payload: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
