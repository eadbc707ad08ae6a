package api

import "errors"

// Errors returned by RemoteLoader. Load never returns anything else, so
// callers can branch with errors.Is.
var (
	// ErrConnectivity indicates no HTTP response was obtained
	ErrConnectivity = errors.New("connectivity")

	// ErrInvalidData indicates a response was obtained but its status was
	// not 200 or its body failed to decode
	ErrInvalidData = errors.New("invalid data")
)
