// Package errs provides the structured error envelope used across the wsdot client.
package errs

import (
	"strconv"
	"strings"
	"time"
)

// Code identifies a failure category in the fetch pipeline.
type Code string

const (
	// CodeNetwork indicates a transport-level failure.
	CodeNetwork Code = "network"
	// CodeAPI indicates an upstream HTTP error response.
	CodeAPI Code = "api_error"
	// CodeValidation indicates invalid input or a schema mismatch.
	CodeValidation Code = "validation"
	// CodeTimeout indicates the request exceeded its deadline.
	CodeTimeout Code = "timeout"
	// CodeCORS indicates a cross-origin permission failure.
	CodeCORS Code = "cors"
	// CodeInvalidResponse indicates an unparseable or empty response body.
	CodeInvalidResponse Code = "invalid_response"
	// CodeRateLimited indicates the request exceeded rate limits.
	CodeRateLimited Code = "rate_limited"
	// CodeConfig indicates a programming or wiring error in the caller.
	CodeConfig Code = "config"
)

// E captures structured error information produced across the fetch pipeline.
type E struct {
	Endpoint  string
	Code      Code
	HTTP      int
	URL       string
	Message   string
	Timestamp time.Time

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the endpoint and failure code.
func New(endpoint string, code Code, opts ...Option) *E {
	e := &E{
		Endpoint:  strings.TrimSpace(endpoint),
		Code:      code,
		HTTP:      0,
		URL:       "",
		Message:   "",
		Timestamp: time.Now().UTC(),
		cause:     nil,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithHTTP records the associated HTTP status code.
func WithHTTP(status int) Option {
	return func(e *E) {
		e.HTTP = status
	}
}

// WithURL records the request URL that produced the failure.
func WithURL(url string) Option {
	trimmed := strings.TrimSpace(url)
	return func(e *E) {
		e.URL = trimmed
	}
}

// WithTimestamp overrides the envelope timestamp.
func WithTimestamp(ts time.Time) Option {
	return func(e *E) {
		if !ts.IsZero() {
			e.Timestamp = ts.UTC()
		}
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	endpoint := strings.TrimSpace(e.Endpoint)
	if endpoint == "" {
		endpoint = "unknown"
	}
	parts = append(parts, "endpoint="+endpoint)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.HTTP > 0 {
		parts = append(parts, "http="+strconv.Itoa(e.HTTP))
	}
	if e.URL != "" {
		parts = append(parts, "url="+strconv.Quote(e.URL))
	}
	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// Invalid returns a standardized validation error for bad caller input.
func Invalid(endpoint, msg string) *E {
	return New(endpoint, CodeValidation, WithMessage(msg))
}
