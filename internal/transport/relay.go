package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ferryline/wsdot/errs"
)

// Relay works around missing cross-origin permissions at the upstream server
// by requesting a callback-bearing script and evaluating it with the callback
// registered on the interpreter's global scope. The payload handed to the
// callback becomes the response body.
type Relay struct {
	client  *http.Client
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewRelay creates the relay strategy enforcing the provided per-call timeout.
func NewRelay(timeout time.Duration) *Relay {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := new(http.Client)
	client.Timeout = timeout
	return &Relay{
		client:  client,
		timeout: timeout,
		pending: make(map[string]struct{}),
	}
}

// Pending reports the number of callbacks still registered. A drained relay
// reports zero; anything else indicates a cleanup leak.
func (r *Relay) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Fetch requests the callback script and returns the captured payload
// re-serialized as JSON text.
func (r *Relay) Fetch(ctx context.Context, req Request) (string, error) {
	name := callbackName()

	r.mu.Lock()
	r.pending[name] = struct{}{}
	r.mu.Unlock()
	defer func() {
		// Idempotent cleanup regardless of success or failure.
		r.mu.Lock()
		delete(r.pending, name)
		r.mu.Unlock()
	}()

	separator := "?"
	if strings.Contains(req.URL, "?") {
		separator = "&"
	}
	scriptURL := req.URL + separator + "callback=" + name

	type outcome struct {
		body string
		err  error
	}
	done := make(chan outcome, 1)

	go func() {
		payload, invoked, err := r.load(ctx, scriptURL, name)
		if err != nil {
			done <- outcome{err: err}
			return
		}
		if !invoked {
			// The script never handed us a payload; mirror the browser
			// behaviour and let the deadline expire.
			return
		}
		body, err := serialize(payload, req.ExpectsList)
		done <- outcome{body: body, err: err}
	}()

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	select {
	case out := <-done:
		if out.err != nil {
			return "", errs.Classify(out.err, errs.Context{Endpoint: req.Endpoint, URL: req.URL})
		}
		return out.body, nil
	case <-timer.C:
		return "", errs.New(req.Endpoint, errs.CodeTimeout,
			errs.WithURL(req.URL),
			errs.WithMessage(fmt.Sprintf("relay request timed out after %s", r.timeout)))
	case <-ctx.Done():
		return "", errs.Classify(ctx.Err(), errs.Context{Endpoint: req.Endpoint, URL: req.URL})
	}
}

// load fetches the script text and evaluates it with the named callback
// registered; it reports whether the callback was invoked.
func (r *Relay) load(ctx context.Context, scriptURL, name string) (any, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, scriptURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("script request: %w", err)
	}
	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, false, fmt.Errorf("script failed to load: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("script failed to load: status %d", resp.StatusCode)
	}
	script, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("script failed to load: %w", err)
	}

	rt := goja.New()
	var payload any
	invoked := false
	callback := func(call goja.FunctionCall) goja.Value {
		invoked = true
		payload = call.Argument(0).Export()
		return goja.Undefined()
	}
	if err := rt.Set(name, callback); err != nil {
		return nil, false, fmt.Errorf("register callback: %w", err)
	}
	if _, err := rt.RunString(string(script)); err != nil {
		return nil, false, fmt.Errorf("script evaluation: %w", err)
	}
	return payload, invoked, nil
}

// serialize normalizes empty payload shapes and re-encodes the captured
// value as JSON so both strategies share one response contract.
func serialize(payload any, expectsList bool) (string, error) {
	if isEmptyShape(payload) {
		if expectsList {
			return "[]", nil
		}
		return "{}", nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("invalid response: %w", err)
	}
	return string(raw), nil
}

func isEmptyShape(payload any) bool {
	switch v := payload.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func callbackName() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("wsf_%d_%s", time.Now().UnixMilli(), suffix)
}
