package schema

import (
	goskema "github.com/reoring/goskema"
	g "github.com/reoring/goskema/dsl"
	"github.com/shopspring/decimal"
)

// FareLineItem is one purchasable fare for a terminal pair.
type FareLineItem struct {
	FareLineItemID       int             `json:"FareLineItemID"`
	FareLineItem         string          `json:"FareLineItem"`
	Category             string          `json:"Category"`
	DirectionIndependent bool            `json:"DirectionIndependent"`
	Amount               decimal.Decimal `json:"Amount"`
}

// FareTotal is a computed combination total for a fare selection.
type FareTotal struct {
	TotalType   int             `json:"TotalType"`
	Description string          `json:"Description"`
	Amount      decimal.Decimal `json:"Amount"`
}

// FareLineItemSchema validates one fare line item. Amounts decode to exact
// decimals rather than floats.
func FareLineItemSchema() goskema.Schema[FareLineItem] {
	return g.ObjectOf[FareLineItem]().
		Field("FareLineItemID", g.IntOf[int]()).Required().
		Field("FareLineItem", g.StringOf[string]()).Required().
		Field("Category", g.StringOf[string]()).Optional().
		Field("DirectionIndependent", g.BoolOf[bool]()).Optional().
		Field("Amount", g.SchemaOf(Money())).Required().
		UnknownStrip().
		MustBind()
}

// FareTotalSchema validates one computed fare total.
func FareTotalSchema() goskema.Schema[FareTotal] {
	return g.ObjectOf[FareTotal]().
		Field("TotalType", g.IntOf[int]()).Required().
		Field("Description", g.StringOf[string]()).Optional().
		Field("Amount", g.SchemaOf(Money())).Required().
		UnknownStrip().
		MustBind()
}
