package ownerportal

import "fmt"

// AuthError covers every way of failing to establish a usable session:
// an unreachable login page, a missing security token, rejected
// credentials or a bad response from the token endpoint.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s", e.Reason)
}

// FetchError is a non-200 status from the reservations listing
// endpoint.
type FetchError struct {
	Status int
	Page   int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch: unexpected status %d on page %d", e.Status, e.Page)
}

// NetworkError wraps a transport-level failure (connection refused,
// dns, timeout).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %s", e.Err.Error())
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// DecodeError is a response body whose Content-Encoding names a
// compression scheme the body does not actually decode under.
type DecodeError struct {
	Encoding string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %s", e.Encoding, e.Err.Error())
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
