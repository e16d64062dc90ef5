package dashclient

import "fmt"

// TransportError reports a request that never produced a server response:
// dial failures, timeouts, ctx cancellation, broken connections.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("dashclient: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RequestError reports a non-2xx response. Message carries the server's
// message body verbatim.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("dashclient: server returned %d: %s", e.StatusCode, e.Message)
}

// ShapeError reports a 2xx response whose JSON body is missing an expected
// envelope field, or could not be decoded at all.
type ShapeError struct {
	Field string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("dashclient: response missing field %q", e.Field)
}
