package chatclient

import (
	"errors"
	"fmt"
)

// ErrTimeout is returned when a request does not complete before its deadline.
var ErrTimeout = errors.New("request timed out")

// APIError is a non-2xx response carrying the server's detail message.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Detail)
}

// TransportError covers network failures and unparsable responses.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
