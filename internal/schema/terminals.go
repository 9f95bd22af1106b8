package schema

import (
	goskema "github.com/reoring/goskema"
	g "github.com/reoring/goskema/dsl"
)

// TerminalBasic is the static description of one ferry terminal.
type TerminalBasic struct {
	TerminalID               int    `json:"TerminalID"`
	TerminalName             string `json:"TerminalName"`
	TerminalAbbrev           string `json:"TerminalAbbrev"`
	RegionID                 int    `json:"RegionID"`
	OverheadPassengerLoading bool   `json:"OverheadPassengerLoading"`
}

// TerminalWait is the current wait-time notice for one terminal.
type TerminalWait struct {
	TerminalID   int        `json:"TerminalID"`
	TerminalName string     `json:"TerminalName"`
	WaitTimes    []WaitTime `json:"WaitTimes"`
}

// WaitTime is one route-level wait annotation at a terminal.
type WaitTime struct {
	RouteName     string `json:"RouteName"`
	WaitTimeNotes string `json:"WaitTimeNotes"`
}

// TerminalBasicSchema validates one terminal record.
func TerminalBasicSchema() goskema.Schema[TerminalBasic] {
	return g.ObjectOf[TerminalBasic]().
		Field("TerminalID", g.IntOf[int]()).Required().
		Field("TerminalName", g.StringOf[string]()).Required().
		Field("TerminalAbbrev", g.StringOf[string]()).Optional().
		Field("RegionID", g.IntOf[int]()).Optional().
		Field("OverheadPassengerLoading", g.BoolOf[bool]()).Optional().
		UnknownStrip().
		MustBind()
}

func waitTimeSchema() goskema.Schema[WaitTime] {
	return g.ObjectOf[WaitTime]().
		Field("RouteName", g.StringOf[string]()).Optional().
		Field("WaitTimeNotes", g.StringOf[string]()).Optional().
		UnknownStrip().
		MustBind()
}

// TerminalWaitSchema validates one terminal wait record.
func TerminalWaitSchema() goskema.Schema[TerminalWait] {
	return g.ObjectOf[TerminalWait]().
		Field("TerminalID", g.IntOf[int]()).Required().
		Field("TerminalName", g.StringOf[string]()).Required().
		Field("WaitTimes", g.ArrayOf(waitTimeSchema())).Optional().
		UnknownStrip().
		MustBind()
}
