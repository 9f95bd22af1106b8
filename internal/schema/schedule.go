package schema

import (
	"time"

	goskema "github.com/reoring/goskema"
	g "github.com/reoring/goskema/dsl"
)

// Schedule is a WSF sailing schedule for one route and date.
type Schedule struct {
	ScheduleID     int             `json:"ScheduleID"`
	ScheduleName   string          `json:"ScheduleName"`
	ScheduleSeason int             `json:"ScheduleSeason"`
	SchedulePDFUrl string          `json:"SchedulePDFUrl"`
	ScheduleStart  time.Time       `json:"ScheduleStart"`
	ScheduleEnd    time.Time       `json:"ScheduleEnd"`
	TerminalCombos []TerminalCombo `json:"TerminalCombos"`
}

// TerminalCombo is one departing/arriving terminal pairing with its times.
type TerminalCombo struct {
	DepartingTerminalID   int           `json:"DepartingTerminalID"`
	DepartingTerminalName string        `json:"DepartingTerminalName"`
	ArrivingTerminalID    int           `json:"ArrivingTerminalID"`
	ArrivingTerminalName  string        `json:"ArrivingTerminalName"`
	SailingNotes          string        `json:"SailingNotes"`
	Times                 []SailingTime `json:"Times"`
}

// SailingTime is a single scheduled departure.
type SailingTime struct {
	DepartingTime time.Time `json:"DepartingTime"`
	VesselID      int       `json:"VesselID"`
	VesselName    string    `json:"VesselName"`
}

// Route identifies one WSF route.
type Route struct {
	RouteID     int    `json:"RouteID"`
	RouteAbbrev string `json:"RouteAbbrev"`
	Description string `json:"Description"`
	RegionID    int    `json:"RegionID"`
}

func sailingTimeSchema() goskema.Schema[SailingTime] {
	return g.ObjectOf[SailingTime]().
		Field("DepartingTime", g.SchemaOf(WireTime())).Required().
		Field("VesselID", g.IntOf[int]()).Required().
		Field("VesselName", g.StringOf[string]()).Required().
		UnknownStrip().
		MustBind()
}

func terminalComboSchema() goskema.Schema[TerminalCombo] {
	return g.ObjectOf[TerminalCombo]().
		Field("DepartingTerminalID", g.IntOf[int]()).Required().
		Field("DepartingTerminalName", g.StringOf[string]()).Required().
		Field("ArrivingTerminalID", g.IntOf[int]()).Required().
		Field("ArrivingTerminalName", g.StringOf[string]()).Required().
		Field("SailingNotes", g.StringOf[string]()).Optional().
		Field("Times", g.ArrayOf(sailingTimeSchema())).Required().
		UnknownStrip().
		MustBind()
}

// ScheduleSchema validates a schedule payload.
func ScheduleSchema() goskema.Schema[Schedule] {
	return g.ObjectOf[Schedule]().
		Field("ScheduleID", g.IntOf[int]()).Required().
		Field("ScheduleName", g.StringOf[string]()).Required().
		Field("ScheduleSeason", g.IntOf[int]()).Optional().
		Field("SchedulePDFUrl", g.StringOf[string]()).Optional().
		Field("ScheduleStart", g.SchemaOf(WireTime())).Required().
		Field("ScheduleEnd", g.SchemaOf(WireTime())).Required().
		Field("TerminalCombos", g.ArrayOf(terminalComboSchema())).Optional().
		UnknownStrip().
		MustBind()
}

// RouteSchema validates one route record.
func RouteSchema() goskema.Schema[Route] {
	return g.ObjectOf[Route]().
		Field("RouteID", g.IntOf[int]()).Required().
		Field("RouteAbbrev", g.StringOf[string]()).Required().
		Field("Description", g.StringOf[string]()).Optional().
		Field("RegionID", g.IntOf[int]()).Optional().
		UnknownStrip().
		MustBind()
}
