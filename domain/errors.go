package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrMissingBaseURL    = errors.New("relative endpoint requires a base URL")
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")
	ErrHandlerNotFound   = errors.New("handler not registered")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	// KindInvalidConfig covers descriptor-level problems: bad method,
	// malformed header, missing base URL, malformed scenario shape.
	KindInvalidConfig ErrorKind = "invalid_config"
	// KindNetwork covers transport failures (connection refused, timeouts).
	KindNetwork ErrorKind = "network"
	// KindParse covers non-JSON bodies where JSON is required.
	KindParse ErrorKind = "parse"
	// KindScenario covers workflow failures: failed extraction, error
	// completion conditions, non-success step responses.
	KindScenario ErrorKind = "scenario"
	// KindTimeout covers an exceeded polling deadline.
	KindTimeout ErrorKind = "timeout"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind helps callers classify errors without unwrapping manually.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}
