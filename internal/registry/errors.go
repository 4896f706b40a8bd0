package registry

import "errors"

var (
	// ErrMalformedResponse is returned when a response body has no top-level
	// "data" member. It is not retried.
	ErrMalformedResponse = errors.New("registry response is missing the data object")

	// ErrUnexpectedStatus is returned for non-2xx registry responses.
	ErrUnexpectedStatus = errors.New("unexpected registry status")
)
