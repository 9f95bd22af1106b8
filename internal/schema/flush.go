package schema

import (
	"context"
	"time"

	goskema "github.com/reoring/goskema"

	"github.com/ferryline/wsdot/internal/endpoint"
)

type flushDateValidator struct{}

// FlushDate returns the validator for cache flush probe responses. Families
// differ in shape: some return a bare timestamp, others an object holding a
// single timestamp field; null means no flush information and is a valid
// success, reported as the zero time.
func FlushDate() endpoint.Validator { return flushDateValidator{} }

func (flushDateValidator) Parse(ctx context.Context, data any) (any, error) {
	switch v := data.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		return WireTimeNullable().Parse(ctx, v)
	case map[string]any:
		for _, item := range v {
			switch field := item.(type) {
			case time.Time:
				return field, nil
			case string:
				if t, err := WireTimeNullable().Parse(ctx, field); err == nil {
					return t, nil
				}
			case nil:
				return time.Time{}, nil
			}
		}
	}
	return nil, goskema.Issues{goskema.Issue{
		Path:    "/",
		Code:    goskema.CodeInvalidType,
		Message: "expected a flush date value or a single-field object",
	}}
}
