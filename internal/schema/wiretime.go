package schema

import (
	"context"
	"time"

	goskema "github.com/reoring/goskema"
	js "github.com/reoring/goskema/jsonschema"

	"github.com/ferryline/wsdot/internal/wsdate"
)

// wireTimeSchema validates date values arriving from the normalizer. The
// normalizer converts wire strings ahead of validation, so the usual input
// is already a time.Time; raw wire strings are still accepted so the schema
// stands alone.
type wireTimeSchema struct {
	nullable bool
}

// WireTime returns a schema for a required upstream date value.
func WireTime() goskema.Schema[time.Time] { return wireTimeSchema{nullable: false} }

// WireTimeNullable returns a schema accepting null as the zero time.
func WireTimeNullable() goskema.Schema[time.Time] { return wireTimeSchema{nullable: true} }

func (s wireTimeSchema) Parse(_ context.Context, v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		if parsed, ok := wsdate.Parse(t); ok {
			return parsed, nil
		}
	case nil:
		if s.nullable {
			return time.Time{}, nil
		}
	}
	return time.Time{}, goskema.Issues{goskema.Issue{
		Path:    "/",
		Code:    goskema.CodeInvalidType,
		Message: "expected an upstream date value",
	}}
}

func (s wireTimeSchema) ParseWithMeta(ctx context.Context, v any) (goskema.Decoded[time.Time], error) {
	t, err := s.Parse(ctx, v)
	if err != nil {
		return goskema.Decoded[time.Time]{}, err
	}
	return goskema.Decoded[time.Time]{Value: t, Presence: goskema.PresenceMap{"/": goskema.PresenceSeen}}, nil
}

func (s wireTimeSchema) TypeCheck(ctx context.Context, v any) error {
	_, err := s.Parse(ctx, v)
	return err
}

func (s wireTimeSchema) RuleCheck(context.Context, any) error { return nil }

func (s wireTimeSchema) Validate(ctx context.Context, v any) error {
	return s.TypeCheck(ctx, v)
}

func (s wireTimeSchema) ValidateValue(_ context.Context, v time.Time) error {
	if v.IsZero() && !s.nullable {
		return goskema.Issues{goskema.Issue{
			Path:    "/",
			Code:    goskema.CodeRequired,
			Message: "date must not be zero",
		}}
	}
	return nil
}

func (s wireTimeSchema) JSONSchema() (*js.Schema, error) {
	return &js.Schema{Type: "string", Format: "date-time"}, nil
}
