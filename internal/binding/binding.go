// Package binding connects catalog endpoints to the query store: it derives
// stable cache keys, applies the flush-driven policy override, and wires
// flush monitor notifications to cache invalidation.
package binding

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ferryline/wsdot/config"
	"github.com/ferryline/wsdot/internal/endpoint"
	"github.com/ferryline/wsdot/internal/flushwatch"
	"github.com/ferryline/wsdot/internal/pipeline"
	"github.com/ferryline/wsdot/internal/querystore"
	"github.com/ferryline/wsdot/internal/wsdate"
)

// Binder builds query store queries for catalog endpoints.
type Binder struct {
	fetcher *pipeline.Fetcher
	store   *querystore.Store
}

// New constructs a binder over the fetcher and store.
func New(fetcher *pipeline.Fetcher, store *querystore.Store) *Binder {
	return &Binder{fetcher: fetcher, store: store}
}

// Key derives the stable cache key for an endpoint and parameter record.
// Parameters are sorted by name so equivalent records produce equal keys.
func Key(desc endpoint.Descriptor, params endpoint.Params) string {
	if len(params) == 0 {
		return desc.ID()
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(desc.ID())
	sb.WriteByte('?')
	for i, name := range names {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(name)
		sb.WriteByte('=')
		sb.WriteString(keyValue(params[name]))
	}
	return sb.String()
}

func keyValue(value any) string {
	if t, ok := value.(time.Time); ok {
		return wsdate.FormatParam(t)
	}
	return fmt.Sprintf("%v", value)
}

// Profile resolves the effective cache profile for a descriptor. Endpoints
// wired to a flush monitor are pinned to the static profile because
// invalidation, not polling, drives their freshness. Flush probes keep their
// own polling policy.
func Profile(desc endpoint.Descriptor) endpoint.Profile {
	if desc.FlushFamily != "" && !desc.IsFlushProbe {
		return endpoint.PolicyStatic.Profile()
	}
	return desc.Policy.Profile()
}

// Tag resolves the invalidation tag. Only flush-wired data endpoints carry
// their flush family's tag. Probes and unwired endpoints get their endpoint
// ID instead; IDs contain a slash and never collide with a family name, so
// no monitor signal reaches them.
func Tag(desc endpoint.Descriptor) string {
	if desc.FlushFamily != "" && !desc.IsFlushProbe {
		return string(desc.FlushFamily)
	}
	return desc.ID()
}

// Bind produces the query for one endpoint fetch.
func (b *Binder) Bind(desc endpoint.Descriptor, params endpoint.Params, opts pipeline.Options) querystore.Query {
	return querystore.Query{
		Key:     Key(desc, params),
		Tag:     Tag(desc),
		Profile: Profile(desc),
		Fetch: func(ctx context.Context) (any, error) {
			return b.fetcher.Fetch(ctx, desc, params, opts)
		},
	}
}

// WireMonitor subscribes the store's invalidation to every family's flush
// notifications.
func (b *Binder) WireMonitor(ctx context.Context, monitor *flushwatch.Monitor) {
	for _, family := range config.Families() {
		monitor.Subscribe(family, func(family config.Family, _ time.Time) {
			b.store.Invalidate(ctx, string(family))
		})
	}
}
