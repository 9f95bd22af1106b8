package flushwatch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ferryline/wsdot/config"
	"github.com/ferryline/wsdot/internal/endpoint"
	"github.com/ferryline/wsdot/internal/pipeline"
	"github.com/ferryline/wsdot/internal/schema"
)

func probeDescriptor() endpoint.Descriptor {
	return endpoint.Descriptor{
		Family:       config.FamilyVessels,
		Name:         "cacheflushdate",
		URLTemplate:  "/cacheflushdate",
		Output:       schema.FlushDate(),
		IsFlushProbe: true,
	}
}

func probeFetcher(t *testing.T, srv *httptest.Server) *pipeline.Fetcher {
	t.Helper()
	cfg := config.Apply(config.Default(),
		config.WithAccessCode("test-code"),
		config.WithBaseURL(config.FamilyVessels, srv.URL+"/ferries/api/vessels/rest"),
	)
	return pipeline.New(cfg)
}

func sequenceServer(responses []string) (*httptest.Server, *atomic.Int64) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		i := calls.Add(1) - 1
		if int(i) >= len(responses) {
			i = int64(len(responses) - 1)
		}
		_, _ = w.Write([]byte(responses[i]))
	}))
	return srv, &calls
}

func TestMonitorFiresOnValueChangeOnly(t *testing.T) {
	t1 := `"/Date(1695193200000-0700)/"`
	t2 := `"/Date(1695279600000-0700)/"`
	srv, _ := sequenceServer([]string{t1, t1, t2, t2, t1})
	defer srv.Close()

	monitor := New(probeFetcher(t, srv), time.Minute)
	monitor.Track(probeDescriptor())

	var mu sync.Mutex
	var fired []time.Time
	monitor.Subscribe(config.FamilyVessels, func(_ config.Family, at time.Time) {
		mu.Lock()
		fired = append(fired, at)
		mu.Unlock()
	})

	for range 5 {
		monitor.Poll(context.Background())
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, fired, 2, "only the third and fifth probes change the value")
	require.Equal(t, int64(1695279600000), fired[0].UnixMilli())
	require.Equal(t, int64(1695193200000), fired[1].UnixMilli())
}

func TestMonitorFirstObservationIsSilent(t *testing.T) {
	srv, _ := sequenceServer([]string{`"/Date(1695193200000-0700)/"`})
	defer srv.Close()

	monitor := New(probeFetcher(t, srv), time.Minute)
	monitor.Track(probeDescriptor())

	var fired atomic.Int64
	monitor.Subscribe(config.FamilyVessels, func(config.Family, time.Time) { fired.Add(1) })

	monitor.Poll(context.Background())
	monitor.Poll(context.Background())
	require.Equal(t, int64(0), fired.Load())
}

func TestMonitorSwallowsProbeFailures(t *testing.T) {
	t1 := `"/Date(1695193200000-0700)/"`
	t2 := `"/Date(1695279600000-0700)/"`
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		switch calls.Add(1) {
		case 1:
			_, _ = w.Write([]byte(t1))
		case 2:
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		default:
			_, _ = w.Write([]byte(t2))
		}
	}))
	defer srv.Close()

	monitor := New(probeFetcher(t, srv), time.Minute)
	monitor.Track(probeDescriptor())

	var fired atomic.Int64
	monitor.Subscribe(config.FamilyVessels, func(config.Family, time.Time) { fired.Add(1) })

	monitor.Poll(context.Background())
	monitor.Poll(context.Background())
	require.Equal(t, int64(0), fired.Load(), "failed probe must not fire or clear state")

	monitor.Poll(context.Background())
	require.Equal(t, int64(1), fired.Load(), "baseline survives the failed cycle")
}

func TestMonitorNullResponseCarriesNoInformation(t *testing.T) {
	srv, _ := sequenceServer([]string{
		`"/Date(1695193200000-0700)/"`,
		`null`,
		`"/Date(1695193200000-0700)/"`,
	})
	defer srv.Close()

	monitor := New(probeFetcher(t, srv), time.Minute)
	monitor.Track(probeDescriptor())

	var fired atomic.Int64
	monitor.Subscribe(config.FamilyVessels, func(config.Family, time.Time) { fired.Add(1) })

	for range 3 {
		monitor.Poll(context.Background())
	}
	require.Equal(t, int64(0), fired.Load())
}

func TestMonitorSkipsOverlappingCycles(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			<-release
		}
		_, _ = w.Write([]byte(`"/Date(1695193200000-0700)/"`))
	}))
	defer srv.Close()

	monitor := New(probeFetcher(t, srv), time.Minute)
	monitor.Track(probeDescriptor())

	done := make(chan struct{})
	go func() {
		monitor.Poll(context.Background())
		close(done)
	}()

	// Give the first probe time to reach the server, then run an
	// overlapping cycle. It must skip rather than double-probe.
	time.Sleep(50 * time.Millisecond)
	monitor.Poll(context.Background())
	require.Equal(t, int64(1), calls.Load(), "overlapping cycle must not issue a second probe")

	close(release)
	<-done
}

func TestMonitorStartStop(t *testing.T) {
	srv, calls := sequenceServer([]string{`"/Date(1695193200000-0700)/"`})
	defer srv.Close()

	monitor := New(probeFetcher(t, srv), time.Hour)
	monitor.Track(probeDescriptor())
	monitor.Start(context.Background())
	monitor.Start(context.Background())

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
	monitor.Stop()
}
