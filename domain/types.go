package domain

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Vars holds template bindings: variable name -> string value.
// Built once per command invocation, grown by built-ins, file overrides and
// scenario extraction.
type Vars map[string]string

// Clone returns an independent copy so extraction steps never mutate the
// caller's bindings.
func (v Vars) Clone() Vars {
	out := make(Vars, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// HTTPMethod represents an HTTP method (e.g., GET, POST).
type HTTPMethod string

const (
	MethodGet     HTTPMethod = "GET"
	MethodPost    HTTPMethod = "POST"
	MethodPut     HTTPMethod = "PUT"
	MethodPatch   HTTPMethod = "PATCH"
	MethodDelete  HTTPMethod = "DELETE"
	MethodHead    HTTPMethod = "HEAD"
	MethodOptions HTTPMethod = "OPTIONS"
)

// ParseMethod parses a method string case-insensitively into one of the seven
// supported verbs.
func ParseMethod(s string) (HTTPMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GET":
		return MethodGet, nil
	case "POST":
		return MethodPost, nil
	case "PUT":
		return MethodPut, nil
	case "PATCH":
		return MethodPatch, nil
	case "DELETE":
		return MethodDelete, nil
	case "HEAD":
		return MethodHead, nil
	case "OPTIONS":
		return MethodOptions, nil
	default:
		return "", &OpError{
			Op:   "request.method",
			Kind: KindInvalidConfig,
			Err:  fmt.Errorf("%w: %q", ErrUnsupportedMethod, s),
		}
	}
}

// RequestDescriptor is a concrete, template-resolved HTTP request ready to
// send. Immutable once built; one is built per attempt.
type RequestDescriptor struct {
	BaseURL   string   // empty when the endpoint is absolute
	Method    string
	Endpoint  string
	Headers   []string // "Key: Value"
	Body      *string
	Multipart bool
	// FileFields maps multipart field name -> file path.
	FileFields map[string]string
	// TableHint carries optional column hints for callers that render list
	// responses. The core never interprets it.
	TableHint []string
}

// ResolveURL joins the base URL and endpoint. Absolute endpoints pass
// through unchanged; relative endpoints without a base URL are a
// configuration error.
func (d RequestDescriptor) ResolveURL() (string, error) {
	if strings.HasPrefix(d.Endpoint, "http://") || strings.HasPrefix(d.Endpoint, "https://") {
		return d.Endpoint, nil
	}
	if d.BaseURL == "" {
		return "", &OpError{
			Op:   "request.url",
			Kind: KindInvalidConfig,
			Err:  ErrMissingBaseURL,
		}
	}
	if strings.HasSuffix(d.BaseURL, "/") || strings.HasPrefix(d.Endpoint, "/") {
		return strings.TrimSuffix(d.BaseURL, "/") + d.Endpoint, nil
	}
	return d.BaseURL + "/" + d.Endpoint, nil
}

// ParseHeaders converts "Key: Value" lines into an http.Header.
func ParseHeaders(raw []string) (http.Header, error) {
	out := http.Header{}
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			return nil, &OpError{
				Op:   "request.headers",
				Kind: KindInvalidConfig,
				Err:  fmt.Errorf("expected 'Key: Value', got %q", h),
			}
		}
		out.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return out, nil
}

// Response is the raw response data handed back to the caller for rendering.
type Response struct {
	Status int
	Body   string
}

// OK reports whether the status is in the 2xx range.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// ExecutionResult is the unit produced by one attempt and consumed by the
// load harness aggregator. Never persisted beyond the run.
type ExecutionResult struct {
	Elapsed time.Duration
	Success bool
}
