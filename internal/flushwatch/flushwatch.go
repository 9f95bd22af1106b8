// Package flushwatch polls the per-family cache flush date endpoints and
// notifies subscribers when a family's flush date changes. The first
// observation for a family only records the baseline; notifications fire on
// later observations whose value differs.
package flushwatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/ferryline/wsdot/config"
	"github.com/ferryline/wsdot/internal/endpoint"
	"github.com/ferryline/wsdot/internal/observability"
	"github.com/ferryline/wsdot/internal/pipeline"
)

// ChangeFunc receives the family whose cache was flushed and the new flush
// date reported by the service.
type ChangeFunc func(family config.Family, flushedAt time.Time)

type watch struct {
	probe    endpoint.Descriptor
	inFlight atomic.Bool

	mu       sync.Mutex
	observed bool
	last     time.Time
}

// Monitor probes flush date endpoints on a fixed interval. Probe failures
// are logged and swallowed; a failed cycle never disturbs recorded state.
type Monitor struct {
	fetcher  *pipeline.Fetcher
	interval time.Duration

	mu      sync.Mutex
	watches map[config.Family]*watch
	subs    map[config.Family][]ChangeFunc

	wg      conc.WaitGroup
	cancel  context.CancelFunc
	started atomic.Bool
}

// New builds a monitor over the given fetcher. A non-positive interval
// falls back to the configured default of five minutes.
func New(fetcher *pipeline.Fetcher, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = config.Default().FlushInterval
	}
	return &Monitor{
		fetcher:  fetcher,
		interval: interval,
		watches:  make(map[config.Family]*watch),
		subs:     make(map[config.Family][]ChangeFunc),
	}
}

// Track registers a flush probe endpoint for its family. Tracking the same
// family twice replaces the probe but keeps recorded state.
func (m *Monitor) Track(probe endpoint.Descriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.watches[probe.Family]; ok {
		existing.probe = probe
		return
	}
	m.watches[probe.Family] = &watch{probe: probe}
}

// Subscribe registers a callback fired when the family's flush date changes.
func (m *Monitor) Subscribe(family config.Family, fn ChangeFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[family] = append(m.subs[family], fn)
}

// Start launches the polling loop. Calling Start twice is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	if !m.started.CompareAndSwap(false, true) {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Go(func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		m.Poll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Poll(ctx)
			}
		}
	})
}

// Stop cancels polling and waits for in-flight probes to finish.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.started.Store(false)
}

// Poll runs one probe cycle across every tracked family. Families whose
// previous probe is still in flight are skipped this cycle.
func (m *Monitor) Poll(ctx context.Context) {
	m.mu.Lock()
	pending := make([]*watch, 0, len(m.watches))
	for _, w := range m.watches {
		pending = append(pending, w)
	}
	m.mu.Unlock()

	var cycle conc.WaitGroup
	for _, w := range pending {
		cycle.Go(func() { m.probe(ctx, w) })
	}
	cycle.Wait()
}

func (m *Monitor) probe(ctx context.Context, w *watch) {
	family := w.probe.Family
	if !w.inFlight.CompareAndSwap(false, true) {
		observability.Telemetry().IncCounter("wsdot_flush_probe_skipped_total", 1, map[string]string{"family": string(family)})
		return
	}
	defer w.inFlight.Store(false)

	out, err := m.fetcher.Fetch(ctx, w.probe, nil, pipeline.Options{Validate: true})
	if err != nil {
		observability.Log().Error("flush probe failed",
			observability.Field{Key: "family", Value: string(family)},
			observability.Field{Key: "error", Value: err},
		)
		return
	}
	flushedAt, ok := out.(time.Time)
	if !ok || flushedAt.IsZero() {
		// Null probe responses are valid and carry no information.
		return
	}

	w.mu.Lock()
	first := !w.observed
	changed := w.observed && !flushedAt.Equal(w.last)
	w.observed = true
	if first || changed {
		w.last = flushedAt
	}
	w.mu.Unlock()

	if !changed {
		return
	}
	observability.Telemetry().IncCounter("wsdot_flush_changes_total", 1, map[string]string{"family": string(family)})
	observability.Log().Info("cache flush detected",
		observability.Field{Key: "family", Value: string(family)},
		observability.Field{Key: "flushed_at", Value: flushedAt.UTC().Format(time.RFC3339)},
	)

	m.mu.Lock()
	subs := make([]ChangeFunc, len(m.subs[family]))
	copy(subs, m.subs[family])
	m.mu.Unlock()
	for _, fn := range subs {
		fn(family, flushedAt)
	}
}
