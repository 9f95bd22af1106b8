// Package wsdot is a typed client for the Washington State Ferries and WSDOT
// Traveler public REST APIs. It fetches catalog endpoints through a pipeline
// that builds credentialed URLs, normalizes wire dates, validates payloads,
// and classifies every failure, and it caches results keyed by endpoint and
// parameters with flush-date driven invalidation.
package wsdot

import (
	"context"
	"time"

	"github.com/ferryline/wsdot/config"
	"github.com/ferryline/wsdot/errs"
	"github.com/ferryline/wsdot/internal/binding"
	"github.com/ferryline/wsdot/internal/catalog"
	"github.com/ferryline/wsdot/internal/endpoint"
	"github.com/ferryline/wsdot/internal/flushwatch"
	"github.com/ferryline/wsdot/internal/pipeline"
	"github.com/ferryline/wsdot/internal/querystore"
)

// Params carries caller-supplied parameter values for one fetch.
type Params = endpoint.Params

// FetchOptions tunes one fetch through the client.
type FetchOptions struct {
	// Validate runs the endpoint's declared validators and returns typed
	// output instead of camelCase-keyed maps.
	Validate bool
	// Bypass skips the cache and fetches directly.
	Bypass bool
}

// Client is the top-level entry point.
type Client struct {
	cfg     config.Settings
	catalog *catalog.Catalog
	fetcher *pipeline.Fetcher
	store   *querystore.Store
	binder  *binding.Binder
	monitor *flushwatch.Monitor

	runCtx    context.Context
	runCancel context.CancelFunc
}

// New builds a client from settings.
func New(cfg config.Settings, opts ...config.Option) *Client {
	cfg = config.Apply(cfg, opts...)
	fetcher := pipeline.New(cfg)
	store := querystore.New()
	cat := catalog.New()
	binder := binding.New(fetcher, store)
	monitor := flushwatch.New(fetcher, cfg.FlushInterval)
	for _, probe := range cat.Probes() {
		monitor.Track(probe)
	}
	runCtx, runCancel := context.WithCancel(context.Background())
	return &Client{
		cfg:       cfg,
		catalog:   cat,
		fetcher:   fetcher,
		store:     store,
		binder:    binder,
		monitor:   monitor,
		runCtx:    runCtx,
		runCancel: runCancel,
	}
}

// Endpoints returns every catalog descriptor.
func (c *Client) Endpoints() []endpoint.Descriptor {
	return c.catalog.All()
}

// Fetch retrieves one catalog endpoint by ID, serving from cache per the
// endpoint's refresh policy unless bypassed.
func (c *Client) Fetch(ctx context.Context, endpointID string, params Params, opts FetchOptions) (any, error) {
	desc, ok := c.catalog.Lookup(endpointID)
	if !ok {
		return nil, errs.New(endpointID, errs.CodeConfig,
			errs.WithMessage("unknown endpoint"))
	}
	pipeOpts := pipeline.Options{Validate: opts.Validate}
	if opts.Bypass {
		return c.fetcher.Fetch(ctx, desc, params, pipeOpts)
	}
	q := c.binder.Bind(desc, params, pipeOpts)
	c.store.Run(c.runCtx, q)
	return c.store.Get(ctx, q)
}

// Subscribe registers a callback fired on every successful refresh of the
// endpoint's cached value, and starts the endpoint's periodic refetch loop
// when its policy declares one. The returned function removes the
// subscription.
func (c *Client) Subscribe(endpointID string, params Params, fn func(value any)) (func(), error) {
	desc, ok := c.catalog.Lookup(endpointID)
	if !ok {
		return nil, errs.New(endpointID, errs.CodeConfig,
			errs.WithMessage("unknown endpoint"))
	}
	q := c.binder.Bind(desc, params, pipeline.Options{})
	c.store.Run(c.runCtx, q)
	return c.store.Subscribe(q.Key, fn), nil
}

// StartMonitor begins flush-date polling and wires cache invalidation to it.
func (c *Client) StartMonitor(ctx context.Context) {
	c.binder.WireMonitor(ctx, c.monitor)
	c.monitor.Start(ctx)
}

// Wake refetches wake-sensitive cached queries after a process resume.
func (c *Client) Wake(ctx context.Context) {
	c.store.Wake(ctx)
}

// Close stops the flush monitor, the periodic refetch loops, and the cache's
// expiration loop.
func (c *Client) Close() {
	c.monitor.Stop()
	c.runCancel()
	c.store.Close()
}

// OnFlush registers a callback fired when a family's cache flush date changes.
func (c *Client) OnFlush(family config.Family, fn func(family config.Family, flushedAt time.Time)) {
	c.monitor.Subscribe(family, flushwatch.ChangeFunc(fn))
}
