// Package pipeline orchestrates a single endpoint fetch: build the URL,
// execute the transport strategy, normalize the payload, and validate or
// reshape the result. The pipeline never retries; callers that want retry
// semantics layer them on top.
package pipeline

import (
	"context"
	"time"

	"github.com/ferryline/wsdot/config"
	"github.com/ferryline/wsdot/errs"
	"github.com/ferryline/wsdot/internal/endpoint"
	"github.com/ferryline/wsdot/internal/normalize"
	"github.com/ferryline/wsdot/internal/observability"
	"github.com/ferryline/wsdot/internal/transport"
	"github.com/ferryline/wsdot/internal/urlbuild"
)

// StrategyPicker selects the transport strategy for the current environment.
type StrategyPicker interface {
	Select() transport.Strategy
}

// Options tunes a single fetch.
type Options struct {
	// Validate runs the endpoint's declared validators. Input parameters are
	// checked before any network work, and the response payload replaces the
	// manual key transform with schema-validated typed output.
	Validate bool
	// Transport overrides strategy selection for this fetch when non-nil.
	Transport transport.Strategy
}

// Fetcher executes fetches for catalog endpoints against one configuration.
type Fetcher struct {
	cfg      config.Settings
	builder  *urlbuild.Builder
	selector StrategyPicker
}

// New wires a fetcher from settings, constructing the direct and relay
// strategies and the environment-driven selector.
func New(cfg config.Settings) *Fetcher {
	direct := transport.NewDirect(cfg.HTTPTimeout, cfg.RateLimit, cfg.RateBurst)
	relay := transport.NewRelay(cfg.RelayTimeout)
	return &Fetcher{
		cfg:      cfg,
		builder:  urlbuild.New(cfg.AccessCode),
		selector: transport.NewSelector(nil, direct, relay, cfg.ForceRelay),
	}
}

// NewWithSelector wires a fetcher with an explicit strategy picker.
func NewWithSelector(cfg config.Settings, selector StrategyPicker) *Fetcher {
	fetcher := New(cfg)
	if selector != nil {
		fetcher.selector = selector
	}
	return fetcher
}

// Fetch runs the full pipeline for one endpoint. On success the result is
// either schema-validated typed output (Validate set) or the decoded payload
// with wire dates converted and keys renamed to camelCase. Every failure is
// returned as a classified *errs.E.
func (f *Fetcher) Fetch(ctx context.Context, desc endpoint.Descriptor, params endpoint.Params, opts Options) (any, error) {
	id := desc.ID()
	start := time.Now()
	observability.Telemetry().IncCounter("wsdot_fetch_total", 1, map[string]string{"endpoint": id})

	result, err := f.fetch(ctx, desc, params, opts)
	elapsed := time.Since(start)
	observability.Telemetry().ObserveHistogram("wsdot_fetch_duration_seconds", elapsed.Seconds(), map[string]string{"endpoint": id})
	if err != nil {
		classified := errs.Classify(err, errs.Context{Endpoint: id})
		observability.Telemetry().IncCounter("wsdot_fetch_failures_total", 1, map[string]string{
			"endpoint": id,
			"code":     string(classified.Code),
		})
		observability.Log().Error("fetch failed",
			observability.Field{Key: "endpoint", Value: id},
			observability.Field{Key: "code", Value: string(classified.Code)},
			observability.Field{Key: "error", Value: classified.Message},
		)
		return nil, classified
	}
	observability.Log().Debug("fetch complete",
		observability.Field{Key: "endpoint", Value: id},
		observability.Field{Key: "elapsed_ms", Value: elapsed.Milliseconds()},
	)
	return result, nil
}

func (f *Fetcher) fetch(ctx context.Context, desc endpoint.Descriptor, params endpoint.Params, opts Options) (any, error) {
	id := desc.ID()

	if opts.Validate && desc.Output == nil {
		return nil, errs.New(id, errs.CodeConfig,
			errs.WithMessage("validation requested but endpoint declares no output validator"))
	}
	if opts.Validate && desc.Input != nil {
		if _, err := desc.Input.Parse(ctx, map[string]any(params)); err != nil {
			return nil, errs.Classify(err, errs.Context{Endpoint: id})
		}
	}

	base, ok := f.cfg.BaseURL(desc.Family)
	if !ok {
		return nil, errs.New(id, errs.CodeConfig,
			errs.WithMessage("no base URL configured for family "+string(desc.Family)))
	}
	url, err := f.builder.Build(id, base+desc.URLTemplate, params)
	if err != nil {
		return nil, err
	}

	strategy := opts.Transport
	if strategy == nil {
		strategy = f.selector.Select()
	}
	raw, err := strategy.Fetch(ctx, transport.Request{
		URL:         url,
		Endpoint:    id,
		ExpectsList: desc.ExpectsList,
	})
	if err != nil {
		return nil, errs.Classify(err, errs.Context{Endpoint: id, URL: url})
	}

	parsed, err := normalize.Parse(raw)
	if err != nil {
		return nil, errs.Classify(err, errs.Context{Endpoint: id, URL: url})
	}
	dated := normalize.ConvertDates(parsed)

	if opts.Validate {
		out, err := desc.Output.Parse(ctx, dated)
		if err != nil {
			return nil, errs.Classify(err, errs.Context{Endpoint: id, URL: url})
		}
		return out, nil
	}
	return normalize.CamelKeys(dated), nil
}
