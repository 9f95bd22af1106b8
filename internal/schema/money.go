package schema

import (
	"context"
	"encoding/json"
	"strconv"

	goskema "github.com/reoring/goskema"
	js "github.com/reoring/goskema/jsonschema"
	"github.com/shopspring/decimal"
)

// moneySchema validates fare amounts into exact decimals. Upstream sends
// amounts as JSON numbers; string forms are accepted for robustness.
type moneySchema struct{}

// Money returns a schema for a currency amount field.
func Money() goskema.Schema[decimal.Decimal] { return moneySchema{} }

func (moneySchema) Parse(_ context.Context, v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case json.Number:
		if d, err := decimal.NewFromString(n.String()); err == nil {
			return d, nil
		}
	case string:
		if d, err := decimal.NewFromString(n); err == nil {
			return d, nil
		}
	}
	return decimal.Decimal{}, goskema.Issues{goskema.Issue{
		Path:    "/",
		Code:    goskema.CodeInvalidType,
		Message: "expected a currency amount, got " + typeName(v),
	}}
}

func (s moneySchema) ParseWithMeta(ctx context.Context, v any) (goskema.Decoded[decimal.Decimal], error) {
	d, err := s.Parse(ctx, v)
	if err != nil {
		return goskema.Decoded[decimal.Decimal]{}, err
	}
	return goskema.Decoded[decimal.Decimal]{Value: d, Presence: goskema.PresenceMap{"/": goskema.PresenceSeen}}, nil
}

func (s moneySchema) TypeCheck(ctx context.Context, v any) error {
	_, err := s.Parse(ctx, v)
	return err
}

func (moneySchema) RuleCheck(context.Context, any) error { return nil }

func (s moneySchema) Validate(ctx context.Context, v any) error {
	return s.TypeCheck(ctx, v)
}

func (moneySchema) ValidateValue(_ context.Context, v decimal.Decimal) error {
	if v.IsNegative() {
		return goskema.Issues{goskema.Issue{
			Path:    "/",
			Code:    goskema.CodeDomainRange,
			Message: "amount must not be negative: " + v.String(),
		}}
	}
	return nil
}

func (moneySchema) JSONSchema() (*js.Schema, error) {
	return &js.Schema{Type: "number"}, nil
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return strconv.Quote(jsonTypeOf(v))
}

func jsonTypeOf(v any) string {
	switch v.(type) {
	case bool:
		return "boolean"
	case float64, int, int64, json.Number:
		return "number"
	case string:
		return "string"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return "unknown"
	}
}
