package schema

import (
	"time"

	goskema "github.com/reoring/goskema"
	g "github.com/reoring/goskema/dsl"
)

// HighwayAlert is one WSDOT traveler information alert.
type HighwayAlert struct {
	AlertID             int       `json:"AlertID"`
	EventCategory       string    `json:"EventCategory"`
	HeadlineDescription string    `json:"HeadlineDescription"`
	Priority            string    `json:"Priority"`
	Region              string    `json:"Region"`
	LastUpdatedTime     time.Time `json:"LastUpdatedTime"`
}

// HighwayAlertSchema validates one traveler alert record.
func HighwayAlertSchema() goskema.Schema[HighwayAlert] {
	return g.ObjectOf[HighwayAlert]().
		Field("AlertID", g.IntOf[int]()).Required().
		Field("EventCategory", g.StringOf[string]()).Optional().
		Field("HeadlineDescription", g.StringOf[string]()).Required().
		Field("Priority", g.StringOf[string]()).Optional().
		Field("Region", g.StringOf[string]()).Optional().
		Field("LastUpdatedTime", g.SchemaOf(WireTimeNullable())).Optional().
		UnknownStrip().
		MustBind()
}
