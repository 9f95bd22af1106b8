// Package catalog declares the endpoint descriptors the client ships with.
// Each descriptor binds an upstream URL template to its validators, refresh
// policy, and flush wiring. The catalog is built once and read-only after.
package catalog

import (
	"sort"
	"time"

	"github.com/ferryline/wsdot/config"
	"github.com/ferryline/wsdot/internal/endpoint"
	"github.com/ferryline/wsdot/internal/schema"
)

// Catalog indexes descriptors by endpoint ID.
type Catalog struct {
	byID map[string]endpoint.Descriptor
}

// New builds the default catalog.
func New() *Catalog {
	c := &Catalog{byID: make(map[string]endpoint.Descriptor)}
	for _, desc := range descriptors() {
		c.byID[desc.ID()] = desc
	}
	return c
}

// Lookup returns the descriptor for an endpoint ID.
func (c *Catalog) Lookup(id string) (endpoint.Descriptor, bool) {
	desc, ok := c.byID[id]
	return desc, ok
}

// All returns every descriptor sorted by ID.
func (c *Catalog) All() []endpoint.Descriptor {
	out := make([]endpoint.Descriptor, 0, len(c.byID))
	for _, desc := range c.byID {
		out = append(out, desc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Probes returns the flush date probes, one per flush-capable family.
func (c *Catalog) Probes() []endpoint.Descriptor {
	probes := make([]endpoint.Descriptor, 0, 4)
	for _, desc := range c.All() {
		if desc.IsFlushProbe {
			probes = append(probes, desc)
		}
	}
	return probes
}

func flushProbe(family config.Family) endpoint.Descriptor {
	return endpoint.Descriptor{
		Family:       family,
		Name:         "cacheflushdate",
		URLTemplate:  "/cacheflushdate",
		Output:       schema.FlushDate(),
		Policy:       endpoint.PolicyFrequent,
		Description:  "Cache flush date probe for the " + string(family) + " family.",
		IsFlushProbe: true,
	}
}

func descriptors() []endpoint.Descriptor {
	return []endpoint.Descriptor{
		flushProbe(config.FamilySchedule),
		flushProbe(config.FamilyTerminals),
		flushProbe(config.FamilyVessels),
		flushProbe(config.FamilyFares),
		{
			Family:      config.FamilySchedule,
			Name:        "scheduleToday",
			URLTemplate: "/scheduletoday/{DepartingTerminalID}/{ArrivingTerminalID}/{OnlyRemainingTimes}",
			Input: schema.Params(
				schema.ParamSpec{Name: "DepartingTerminalID", Kind: schema.KindInt, Required: true},
				schema.ParamSpec{Name: "ArrivingTerminalID", Kind: schema.KindInt, Required: true},
				schema.ParamSpec{Name: "OnlyRemainingTimes", Kind: schema.KindBool, Required: false},
			),
			Output: schema.Typed[schema.Schedule](schema.ScheduleSchema()),
			SampleParams: endpoint.Params{
				"DepartingTerminalID": 1,
				"ArrivingTerminalID":  10,
				"OnlyRemainingTimes":  false,
			},
			Policy:      endpoint.PolicyModerate,
			Description: "Today's sailing schedule between two terminals.",
			FlushFamily: config.FamilySchedule,
		},
		{
			Family:      config.FamilySchedule,
			Name:        "routes",
			URLTemplate: "/routes/{TripDate}",
			Input: schema.Params(
				schema.ParamSpec{Name: "TripDate", Kind: schema.KindDate, Required: true},
			),
			Output:      schema.List(schema.RouteSchema()),
			Policy:      endpoint.PolicyModerate,
			Description: "Routes available on a trip date.",
			FlushFamily: config.FamilySchedule,
			ExpectsList: true,
		},
		{
			Family:      config.FamilyTerminals,
			Name:        "terminalBasics",
			URLTemplate: "/terminalbasics",
			Output:      schema.List(schema.TerminalBasicSchema()),
			Policy:      endpoint.PolicyModerate,
			Description: "Terminal names, addresses, and facility flags.",
			FlushFamily: config.FamilyTerminals,
			ExpectsList: true,
		},
		{
			Family:      config.FamilyTerminals,
			Name:        "terminalWaitTimes",
			URLTemplate: "/terminalwaittimes/{TerminalID}",
			Input: schema.Params(
				schema.ParamSpec{Name: "TerminalID", Kind: schema.KindInt, Required: false},
			),
			Output:      schema.List(schema.TerminalWaitSchema()),
			Policy:      endpoint.PolicyFrequent,
			Description: "Current wait time notices per terminal.",
			ExpectsList: true,
		},
		{
			Family:      config.FamilyVessels,
			Name:        "vesselLocations",
			URLTemplate: "/vessellocations",
			Output:      schema.List(schema.VesselLocationSchema()),
			Policy:      endpoint.PolicyRealtime,
			Description: "Live vessel positions, headings, and ETAs.",
			ExpectsList: true,
		},
		{
			Family:      config.FamilyVessels,
			Name:        "vesselBasics",
			URLTemplate: "/vesselbasics",
			Output:      schema.List(schema.VesselBasicSchema()),
			Policy:      endpoint.PolicyModerate,
			Description: "Vessel names, classes, and service status.",
			FlushFamily: config.FamilyVessels,
			ExpectsList: true,
		},
		{
			Family:      config.FamilyFares,
			Name:        "fareLineItems",
			URLTemplate: "/farelineitems/{TripDate}/{DepartingTerminalID}/{ArrivingTerminalID}/{RoundTrip}",
			Input: schema.Params(
				schema.ParamSpec{Name: "TripDate", Kind: schema.KindDate, Required: true},
				schema.ParamSpec{Name: "DepartingTerminalID", Kind: schema.KindInt, Required: true},
				schema.ParamSpec{Name: "ArrivingTerminalID", Kind: schema.KindInt, Required: true},
				schema.ParamSpec{Name: "RoundTrip", Kind: schema.KindBool, Required: true},
			),
			Output: schema.List(schema.FareLineItemSchema()),
			SampleParams: endpoint.Params{
				"TripDate":            time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
				"DepartingTerminalID": 3,
				"ArrivingTerminalID":  7,
				"RoundTrip":           false,
			},
			Policy:      endpoint.PolicyModerate,
			Description: "Fare line items for one terminal pair and date.",
			FlushFamily: config.FamilyFares,
			ExpectsList: true,
		},
		{
			Family:      config.FamilyFares,
			Name:        "fareTotals",
			URLTemplate: "/faretotals/{TripDate}/{DepartingTerminalID}/{ArrivingTerminalID}/{RoundTrip}/{FareLineItemID}/{Quantity}",
			Input: schema.Params(
				schema.ParamSpec{Name: "TripDate", Kind: schema.KindDate, Required: true},
				schema.ParamSpec{Name: "DepartingTerminalID", Kind: schema.KindInt, Required: true},
				schema.ParamSpec{Name: "ArrivingTerminalID", Kind: schema.KindInt, Required: true},
				schema.ParamSpec{Name: "RoundTrip", Kind: schema.KindBool, Required: true},
				schema.ParamSpec{Name: "FareLineItemID", Kind: schema.KindInt, Required: true},
				schema.ParamSpec{Name: "Quantity", Kind: schema.KindInt, Required: true},
			),
			Output:      schema.List(schema.FareTotalSchema()),
			Policy:      endpoint.PolicyModerate,
			Description: "Fare totals for a line item and quantity.",
			FlushFamily: config.FamilyFares,
			ExpectsList: true,
		},
		{
			Family:      config.FamilyTraveler,
			Name:        "highwayAlerts",
			URLTemplate: "/HighwayAlerts/HighwayAlertsREST.svc/GetAlertsAsJson",
			Output:      schema.List(schema.HighwayAlertSchema()),
			Policy:      endpoint.PolicyFrequent,
			Description: "Active WSDOT highway alerts statewide.",
			ExpectsList: true,
		},
	}
}
