package schema

import (
	"time"

	goskema "github.com/reoring/goskema"
	g "github.com/reoring/goskema/dsl"
)

// VesselLocation is a live position report for one vessel.
type VesselLocation struct {
	VesselID   int       `json:"VesselID"`
	VesselName string    `json:"VesselName"`
	Latitude   float64   `json:"Latitude"`
	Longitude  float64   `json:"Longitude"`
	Speed      float64   `json:"Speed"`
	Heading    float64   `json:"Heading"`
	InService  bool      `json:"InService"`
	AtDock     bool      `json:"AtDock"`
	TimeStamp  time.Time `json:"TimeStamp"`
}

// VesselBasic is the static description of one vessel.
type VesselBasic struct {
	VesselID     int    `json:"VesselID"`
	VesselName   string `json:"VesselName"`
	VesselAbbrev string `json:"VesselAbbrev"`
	ClassName    string `json:"ClassName"`
	Status       int    `json:"Status"`
	OwnedByWSF   bool   `json:"OwnedByWSF"`
}

// VesselLocationSchema validates one live position record.
func VesselLocationSchema() goskema.Schema[VesselLocation] {
	return g.ObjectOf[VesselLocation]().
		Field("VesselID", g.IntOf[int]()).Required().
		Field("VesselName", g.StringOf[string]()).Required().
		Field("Latitude", g.FloatOf[float64]()).Required().
		Field("Longitude", g.FloatOf[float64]()).Required().
		Field("Speed", g.FloatOf[float64]()).Optional().
		Field("Heading", g.FloatOf[float64]()).Optional().
		Field("InService", g.BoolOf[bool]()).Required().
		Field("AtDock", g.BoolOf[bool]()).Required().
		Field("TimeStamp", g.SchemaOf(WireTime())).Required().
		UnknownStrip().
		MustBind()
}

// VesselBasicSchema validates one static vessel record.
func VesselBasicSchema() goskema.Schema[VesselBasic] {
	return g.ObjectOf[VesselBasic]().
		Field("VesselID", g.IntOf[int]()).Required().
		Field("VesselName", g.StringOf[string]()).Required().
		Field("VesselAbbrev", g.StringOf[string]()).Optional().
		Field("ClassName", g.StringOf[string]()).Optional().
		Field("Status", g.IntOf[int]()).Optional().
		Field("OwnedByWSF", g.BoolOf[bool]()).Optional().
		UnknownStrip().
		MustBind()
}
