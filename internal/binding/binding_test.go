package binding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ferryline/wsdot/config"
	"github.com/ferryline/wsdot/internal/endpoint"
	"github.com/ferryline/wsdot/internal/flushwatch"
	"github.com/ferryline/wsdot/internal/pipeline"
	"github.com/ferryline/wsdot/internal/querystore"
	"github.com/ferryline/wsdot/internal/schema"
)

func TestKeyIsOrderIndependent(t *testing.T) {
	desc := endpoint.Descriptor{Family: config.FamilySchedule, Name: "schedule"}
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	a := Key(desc, endpoint.Params{"TripDate": date, "RouteID": 9})
	b := Key(desc, endpoint.Params{"RouteID": 9, "TripDate": date})
	require.Equal(t, a, b)
	require.Equal(t, "schedule/schedule?RouteID=9&TripDate=2026-09-01", a)
}

func TestKeyWithoutParamsIsEndpointID(t *testing.T) {
	desc := endpoint.Descriptor{Family: config.FamilyVessels, Name: "vessellocations"}
	require.Equal(t, "vessels/vessellocations", Key(desc, nil))
}

func TestProfileOverridesFlushWiredEndpoints(t *testing.T) {
	wired := endpoint.Descriptor{
		Family:      config.FamilySchedule,
		Name:        "routes",
		Policy:      endpoint.PolicyFrequent,
		FlushFamily: config.FamilySchedule,
	}
	require.Equal(t, endpoint.PolicyStatic.Profile(), Profile(wired))

	probe := endpoint.Descriptor{
		Family:       config.FamilySchedule,
		Name:         "cacheflushdate",
		Policy:       endpoint.PolicyFrequent,
		FlushFamily:  config.FamilySchedule,
		IsFlushProbe: true,
	}
	require.Equal(t, endpoint.PolicyFrequent.Profile(), Profile(probe), "probes keep their polling policy")

	free := endpoint.Descriptor{Family: config.FamilyVessels, Name: "vessellocations", Policy: endpoint.PolicyRealtime}
	require.Equal(t, endpoint.PolicyRealtime.Profile(), Profile(free))
}

func TestTagOnlyCarriesFlushFamilyForWiredEndpoints(t *testing.T) {
	wired := endpoint.Descriptor{Family: config.FamilySchedule, Name: "routes", FlushFamily: config.FamilySchedule}
	require.Equal(t, "schedule", Tag(wired))

	unwired := endpoint.Descriptor{Family: config.FamilyVessels, Name: "vesselLocations", Policy: endpoint.PolicyRealtime}
	require.Equal(t, "vessels/vesselLocations", Tag(unwired))

	probe := endpoint.Descriptor{Family: config.FamilyVessels, Name: "cacheflushdate", IsFlushProbe: true}
	require.Equal(t, "vessels/cacheflushdate", Tag(probe))
}

func TestFlushChangeLeavesUnwiredAndProbeEntriesCached(t *testing.T) {
	var locationHits, probeHits atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/ferries/api/vessels/rest/vessellocations", func(w http.ResponseWriter, _ *http.Request) {
		locationHits.Add(1)
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/ferries/api/vessels/rest/cacheflushdate", func(w http.ResponseWriter, _ *http.Request) {
		if probeHits.Add(1) == 1 {
			_, _ = w.Write([]byte(`"/Date(1695193200000-0700)/"`))
			return
		}
		_, _ = w.Write([]byte(`"/Date(1695279600000-0700)/"`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.Apply(config.Default(),
		config.WithAccessCode("test-code"),
		config.WithBaseURL(config.FamilyVessels, srv.URL+"/ferries/api/vessels/rest"),
	)
	fetcher := pipeline.New(cfg)
	store := querystore.New()
	defer store.Close()
	binder := New(fetcher, store)

	probe := endpoint.Descriptor{
		Family:       config.FamilyVessels,
		Name:         "cacheflushdate",
		URLTemplate:  "/cacheflushdate",
		Output:       schema.FlushDate(),
		Policy:       endpoint.PolicyFrequent,
		IsFlushProbe: true,
	}
	locations := endpoint.Descriptor{
		Family:      config.FamilyVessels,
		Name:        "vesselLocations",
		URLTemplate: "/vessellocations",
		Policy:      endpoint.PolicyRealtime,
		ExpectsList: true,
	}
	locQ := binder.Bind(locations, nil, pipeline.Options{})
	probeQ := binder.Bind(probe, nil, pipeline.Options{Validate: true})

	_, err := store.Get(context.Background(), locQ)
	require.NoError(t, err)
	_, err = store.Get(context.Background(), probeQ)
	require.NoError(t, err)
	require.Equal(t, int64(1), locationHits.Load())
	require.Equal(t, int64(1), probeHits.Load())

	monitor := flushwatch.New(fetcher, time.Minute)
	monitor.Track(probe)
	binder.WireMonitor(context.Background(), monitor)
	monitor.Poll(context.Background())
	monitor.Poll(context.Background())

	// Monitor cycles hit the probe URL directly; record the count before
	// checking that the cached entries survived the change signal.
	probesSoFar := probeHits.Load()

	_, err = store.Get(context.Background(), locQ)
	require.NoError(t, err)
	require.Equal(t, int64(1), locationHits.Load(), "vessel flush must not drop the unwired realtime entry")

	_, err = store.Get(context.Background(), probeQ)
	require.NoError(t, err)
	require.Equal(t, probesSoFar, probeHits.Load(), "the probe's cached entry must survive its own change signal")
}

func TestWireMonitorInvalidatesOnFlushChange(t *testing.T) {
	var scheduleHits atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/ferries/api/schedule/rest/routes", func(w http.ResponseWriter, _ *http.Request) {
		scheduleHits.Add(1)
		_, _ = w.Write([]byte(`[]`))
	})
	var flushCalls atomic.Int64
	mux.HandleFunc("/ferries/api/schedule/rest/cacheflushdate", func(w http.ResponseWriter, _ *http.Request) {
		if flushCalls.Add(1) == 1 {
			_, _ = w.Write([]byte(`"/Date(1695193200000-0700)/"`))
			return
		}
		_, _ = w.Write([]byte(`"/Date(1695279600000-0700)/"`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := config.Apply(config.Default(),
		config.WithAccessCode("test-code"),
		config.WithBaseURL(config.FamilySchedule, srv.URL+"/ferries/api/schedule/rest"),
	)
	fetcher := pipeline.New(cfg)
	store := querystore.New()
	defer store.Close()

	binder := New(fetcher, store)
	routes := endpoint.Descriptor{
		Family:      config.FamilySchedule,
		Name:        "routes",
		URLTemplate: "/routes",
		Policy:      endpoint.PolicyModerate,
		FlushFamily: config.FamilySchedule,
		ExpectsList: true,
	}
	q := binder.Bind(routes, nil, pipeline.Options{})

	_, err := store.Get(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, int64(1), scheduleHits.Load())

	// A second read is served from cache under the static override.
	_, err = store.Get(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, int64(1), scheduleHits.Load())

	monitor := flushwatch.New(fetcher, time.Minute)
	monitor.Track(endpoint.Descriptor{
		Family:       config.FamilySchedule,
		Name:         "cacheflushdate",
		URLTemplate:  "/cacheflushdate",
		Output:       schema.FlushDate(),
		IsFlushProbe: true,
	})
	binder.WireMonitor(context.Background(), monitor)

	monitor.Poll(context.Background())
	monitor.Poll(context.Background())

	_, err = store.Get(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, int64(2), scheduleHits.Load(), "flush change must drop the cached entry")
}
