package rest

import (
	"errors"
	"fmt"
	"strings"

	apierr "github.com/modelmill/modelmill/pkg/api/types/errors"
)

// ErrNotFound tells that the addressed resource does not exist.
//
// Clients wrap it with the resource's name, so callers branch with
// errors.Is and still see what was missing.
var ErrNotFound = errors.New("not found")

// ErrServiceUnavailable tells that an optional platform service is not
// installed or not enabled.
var ErrServiceUnavailable = errors.New("service unavailable")

// AuthorizationError is a permission-denied response from an endpoint
// where lacking permission has a known remedy. Its message tells the
// user what to ask their administrator for.
type AuthorizationError struct {
	Endpoint string
	Message  string
	Cause    error
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func (e *AuthorizationError) Unwrap() error {
	return e.Cause
}

// APIError is a non-2xx platform response.
type APIError struct {
	// Summary names the operation that failed.
	Summary string

	StatusCode int

	// Message is the decoded platform error payload, when the response
	// carried one.
	Message *apierr.ErrorMessage

	// Body is the raw response body, kept when no payload could be decoded.
	Body string
}

func (e *APIError) Error() string {
	lines := []string{fmt.Sprintf("%s (status code = %d)", e.Summary, e.StatusCode)}
	if e.Message != nil {
		lines = append(lines, e.Message.String())
	} else if e.Body != "" {
		lines = append(lines, e.Body)
	}
	return strings.Join(lines, "\n")
}

func (e *APIError) Unwrap() error {
	if e.Message == nil {
		return nil
	}
	return *e.Message
}
