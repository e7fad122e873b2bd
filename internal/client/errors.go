package client

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound marks a query that resolved to null for the given handle or id.
// This is an expected outcome (stale cart handle, unknown product), not a
// platform failure.
var ErrNotFound = errors.New("not found")

// TransportError means no usable response was obtained: network failure,
// HTTP-level error or a body that is not valid JSON.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("storefront transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PlatformError means the platform answered with a top-level errors list and
// no usable data payload.
type PlatformError struct {
	Messages []string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("storefront platform error: %s", strings.Join(e.Messages, "; "))
}
