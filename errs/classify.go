package errs

import (
	"context"
	"errors"
	"net"
	"strings"

	goskema "github.com/reoring/goskema"
)

// Context carries per-call metadata stamped onto classified errors.
type Context struct {
	Endpoint string
	URL      string
	HTTP     int
}

// Classify wraps an arbitrary failure into an *E envelope. Passing an error
// that already carries the envelope returns it unchanged.
func Classify(err error, ctx Context) *E {
	if err == nil {
		return nil
	}

	var envelope *E
	if errors.As(err, &envelope) {
		return envelope
	}

	opts := []Option{WithCause(err), WithMessage(err.Error())}
	if ctx.URL != "" {
		opts = append(opts, WithURL(ctx.URL))
	}
	if ctx.HTTP > 0 {
		opts = append(opts, WithHTTP(ctx.HTTP))
	}

	return New(ctx.Endpoint, codeFor(err, ctx), opts...)
}

// codeFor assigns the first matching category in priority order. Message
// sniffing mirrors the upstream failure signals the transports produce.
func codeFor(err error, ctx Context) Code {
	var issues goskema.Issues
	if errors.As(err, &issues) {
		return CodeValidation
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "api error"):
		return CodeAPI
	case ctx.HTTP >= 400:
		if ctx.HTTP == 429 {
			return CodeRateLimited
		}
		return CodeAPI
	case errors.Is(err, context.DeadlineExceeded), isNetTimeout(err), strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		return CodeTimeout
	case strings.Contains(msg, "script"), strings.Contains(msg, "failed to load"):
		return CodeNetwork
	case strings.Contains(msg, "cross-origin"), strings.Contains(msg, "cors"):
		return CodeCORS
	case strings.Contains(msg, "network"), strings.Contains(msg, "fetch"), strings.Contains(msg, "connection"):
		return CodeNetwork
	case strings.Contains(msg, "invalid response"), strings.Contains(msg, "empty body"), strings.Contains(msg, "unexpected end"):
		return CodeInvalidResponse
	default:
		return CodeNetwork
	}
}

func isNetTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
