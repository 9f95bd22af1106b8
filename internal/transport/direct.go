package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ferryline/wsdot/errs"
)

// Direct issues standard HTTP GET requests. Outbound calls share a rate
// limiter so bursts of subscription-driven fetches stay inside upstream
// limits.
type Direct struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewDirect creates the direct strategy with the provided timeout and rate
// limit. Non-positive arguments fall back to safe defaults.
func NewDirect(timeout time.Duration, perSecond float64, burst int) *Direct {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if perSecond <= 0 {
		perSecond = 10
	}
	if burst <= 0 {
		burst = 20
	}
	client := new(http.Client)
	client.Timeout = timeout
	return &Direct{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Fetch performs the GET request and returns the response body as text.
func (d *Direct) Fetch(ctx context.Context, req Request) (string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return "", errs.Classify(err, errs.Context{Endpoint: req.Endpoint, URL: req.URL})
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return "", errs.New(req.Endpoint, errs.CodeConfig,
			errs.WithURL(req.URL),
			errs.WithMessage("create request: "+err.Error()),
			errs.WithCause(err))
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return "", errs.Classify(err, errs.Context{Endpoint: req.Endpoint, URL: req.URL})
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.Classify(err, errs.Context{Endpoint: req.Endpoint, URL: req.URL})
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := errs.CodeAPI
		if resp.StatusCode == http.StatusTooManyRequests {
			code = errs.CodeRateLimited
		}
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return "", errs.New(req.Endpoint, code,
			errs.WithHTTP(resp.StatusCode),
			errs.WithURL(req.URL),
			errs.WithMessage(fmt.Sprintf("API error: status %d: %s", resp.StatusCode, snippet)))
	}

	if strings.TrimSpace(string(body)) == "" {
		return "", errs.New(req.Endpoint, errs.CodeInvalidResponse,
			errs.WithHTTP(resp.StatusCode),
			errs.WithURL(req.URL),
			errs.WithMessage("invalid response: empty body"))
	}
	return string(body), nil
}
