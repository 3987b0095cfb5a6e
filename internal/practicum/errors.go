package practicum

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Concrete errors returned by this package match exactly one
// of them with errors.Is.
var (
	// ErrEndpointUnavailable wraps transport failures: DNS, refused
	// connections, timeouts, truncated bodies.
	ErrEndpointUnavailable = errors.New("endpoint unavailable")
	ErrBadStatus           = errors.New("unexpected response status")
	ErrDecode              = errors.New("malformed response body")
	ErrMissingKey          = errors.New("missing key")
	ErrWrongType           = errors.New("wrong type")
	ErrUnknownStatus       = errors.New("unknown homework status")
)

// StatusError is returned for any non-200 answer from the API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %d", ErrBadStatus, e.Code)
	}
	return fmt.Sprintf("%s %d: %s", ErrBadStatus, e.Code, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrBadStatus
}

// Problem is a single finding of a response or record check.
type Problem struct {
	// Field is the JSON key the problem is about; empty for the document itself.
	Field  string
	Kind   error
	Detail string
}

func (p Problem) String() string {
	field := p.Field
	if field == "" {
		field = "response"
	}
	if p.Detail == "" {
		return fmt.Sprintf("%s: %s", field, p.Kind)
	}
	return fmt.Sprintf("%s: %s (%s)", field, p.Kind, p.Detail)
}

// ValidationError lists every problem found in one check.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.String())
	}
	return "invalid response: " + strings.Join(parts, "; ")
}

// Is matches any kind present among the problems.
func (e *ValidationError) Is(target error) bool {
	for _, p := range e.Problems {
		if p.Kind == target {
			return true
		}
	}
	return false
}

// UnknownStatusError carries a status value outside the verdict table.
type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("%s %q", ErrUnknownStatus, e.Status)
}

func (e *UnknownStatusError) Is(target error) bool {
	return target == ErrUnknownStatus
}

// AsValidationError unwraps err into a ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

// Kind classifies err for logging: transport, protocol or domain.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEndpointUnavailable):
		return "transport"
	case errors.Is(err, ErrUnknownStatus):
		return "domain"
	case errors.Is(err, ErrBadStatus), errors.Is(err, ErrDecode),
		errors.Is(err, ErrMissingKey), errors.Is(err, ErrWrongType):
		return "protocol"
	default:
		return "unexpected"
	}
}
