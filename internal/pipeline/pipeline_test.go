package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ferryline/wsdot/config"
	"github.com/ferryline/wsdot/errs"
	"github.com/ferryline/wsdot/internal/endpoint"
	"github.com/ferryline/wsdot/internal/schema"
)

const scheduleBody = `{
	"ScheduleID": 192,
	"ScheduleName": "Anacortes / San Juan Islands",
	"ScheduleStart": "/Date(1695193200000-0700)/",
	"ScheduleEnd": "/Date(1703923200000-0800)/",
	"TerminalCombos": [{
		"DepartingTerminalID": 1,
		"DepartingTerminalName": "Anacortes",
		"ArrivingTerminalID": 10,
		"ArrivingTerminalName": "Friday Harbor",
		"Times": [{
			"DepartingTime": "/Date(1695218400000-0700)/",
			"VesselID": 18,
			"VesselName": "Yakima"
		}]
	}]
}`

func scheduleDescriptor() endpoint.Descriptor {
	return endpoint.Descriptor{
		Family:      config.FamilySchedule,
		Name:        "scheduleToday",
		URLTemplate: "/scheduletoday/{DepartingTerminalID}/{ArrivingTerminalID}/{OnlyRemainingTimes}",
		Input: schema.Params(
			schema.ParamSpec{Name: "DepartingTerminalID", Kind: schema.KindInt, Required: true},
			schema.ParamSpec{Name: "ArrivingTerminalID", Kind: schema.KindInt, Required: true},
			schema.ParamSpec{Name: "OnlyRemainingTimes", Kind: schema.KindBool, Required: false},
		),
		Output: schema.Typed[schema.Schedule](schema.ScheduleSchema()),
	}
}

func fetcherFor(t *testing.T, srv *httptest.Server, family config.Family, basePath string) *Fetcher {
	t.Helper()
	cfg := config.Apply(config.Default(),
		config.WithAccessCode("test-code"),
		config.WithBaseURL(family, srv.URL+basePath),
	)
	return New(cfg)
}

func TestFetchScheduleTodayValidated(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(scheduleBody))
	}))
	defer srv.Close()

	fetcher := fetcherFor(t, srv, config.FamilySchedule, "/ferries/api/schedule/rest")
	out, err := fetcher.Fetch(context.Background(), scheduleDescriptor(), endpoint.Params{
		"DepartingTerminalID": 1,
		"ArrivingTerminalID":  10,
		"OnlyRemainingTimes":  false,
	}, Options{Validate: true})
	require.NoError(t, err)

	require.Equal(t, "/ferries/api/schedule/rest/scheduletoday/1/10/false", gotPath)
	require.Equal(t, "apiaccesscode=test-code", gotQuery)

	sched, ok := out.(schema.Schedule)
	require.True(t, ok, "expected typed schedule, got %T", out)
	require.Equal(t, 192, sched.ScheduleID)
	require.Len(t, sched.TerminalCombos, 1)
	require.Len(t, sched.TerminalCombos[0].Times, 1)
	departing := sched.TerminalCombos[0].Times[0].DepartingTime
	require.Equal(t, int64(1695218400000), departing.UnixMilli())
}

func TestFetchWithoutValidationRenamesKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"VesselName": "Tacoma", "LastDock": "/Date(1695193200000-0700)/"}`))
	}))
	defer srv.Close()

	fetcher := fetcherFor(t, srv, config.FamilyVessels, "/ferries/api/vessels/rest")
	desc := endpoint.Descriptor{
		Family:      config.FamilyVessels,
		Name:        "vessellocations",
		URLTemplate: "/vessellocations",
	}
	out, err := fetcher.Fetch(context.Background(), desc, nil, Options{})
	require.NoError(t, err)

	record, ok := out.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Tacoma", record["vesselName"])
	require.NotContains(t, record, "VesselName")
	dock, ok := record["lastDock"].(time.Time)
	require.True(t, ok, "wire date should convert before key renaming, got %T", record["lastDock"])
	require.Equal(t, int64(1695193200000), dock.UnixMilli())
}

func TestFetchValidateWithoutValidatorIsConfigError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	fetcher := fetcherFor(t, srv, config.FamilyVessels, "/ferries/api/vessels/rest")
	desc := endpoint.Descriptor{
		Family:      config.FamilyVessels,
		Name:        "vessellocations",
		URLTemplate: "/vessellocations",
	}
	_, err := fetcher.Fetch(context.Background(), desc, nil, Options{Validate: true})
	var e *errs.E
	require.ErrorAs(t, err, &e)
	require.Equal(t, errs.CodeConfig, e.Code)
}

func TestFetchInputValidationFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(scheduleBody))
	}))
	defer srv.Close()

	fetcher := fetcherFor(t, srv, config.FamilySchedule, "/ferries/api/schedule/rest")
	_, err := fetcher.Fetch(context.Background(), scheduleDescriptor(), endpoint.Params{
		"DepartingTerminalID": "not-a-number",
		"ArrivingTerminalID":  10,
	}, Options{Validate: true})

	var e *errs.E
	require.ErrorAs(t, err, &e)
	require.Equal(t, errs.CodeValidation, e.Code)
	require.Equal(t, int64(0), hits.Load(), "input failure must not reach the network")
}

func TestFetchServerErrorClassifiedAsAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	fetcher := fetcherFor(t, srv, config.FamilyVessels, "/ferries/api/vessels/rest")
	desc := endpoint.Descriptor{Family: config.FamilyVessels, Name: "vesselbasics", URLTemplate: "/vesselbasics"}
	_, err := fetcher.Fetch(context.Background(), desc, nil, Options{})

	var e *errs.E
	require.ErrorAs(t, err, &e)
	require.Equal(t, errs.CodeAPI, e.Code)
	require.Equal(t, http.StatusInternalServerError, e.HTTP)
	require.False(t, e.Timestamp.IsZero())
}

func TestFetchMalformedBodyIsInvalidResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"truncated":`))
	}))
	defer srv.Close()

	fetcher := fetcherFor(t, srv, config.FamilyVessels, "/ferries/api/vessels/rest")
	desc := endpoint.Descriptor{Family: config.FamilyVessels, Name: "vesselbasics", URLTemplate: "/vesselbasics"}
	_, err := fetcher.Fetch(context.Background(), desc, nil, Options{})

	var e *errs.E
	require.ErrorAs(t, err, &e)
	require.Equal(t, errs.CodeInvalidResponse, e.Code)
}

func TestFetchOutputValidationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ScheduleName": 42}`))
	}))
	defer srv.Close()

	fetcher := fetcherFor(t, srv, config.FamilySchedule, "/ferries/api/schedule/rest")
	desc := scheduleDescriptor()
	desc.Input = nil
	_, err := fetcher.Fetch(context.Background(), desc, nil, Options{Validate: true})

	var e *errs.E
	require.ErrorAs(t, err, &e)
	require.Equal(t, errs.CodeValidation, e.Code)
	require.Equal(t, "schedule/scheduleToday", e.Endpoint)
}

func TestFetchTravelerCredentialName(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	fetcher := fetcherFor(t, srv, config.FamilyTraveler, "/Traffic/api")
	desc := endpoint.Descriptor{
		Family:      config.FamilyTraveler,
		Name:        "highwayAlerts",
		URLTemplate: "/HighwayAlerts/HighwayAlertsREST.svc/GetAlertsAsJson",
		ExpectsList: true,
	}
	out, err := fetcher.Fetch(context.Background(), desc, nil, Options{})
	require.NoError(t, err)
	require.True(t, strings.Contains(gotQuery, "AccessCode=test-code"))
	require.NotContains(t, gotQuery, "apiaccesscode")
	list, ok := out.([]any)
	require.True(t, ok)
	require.Empty(t, list)
}
