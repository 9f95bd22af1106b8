// Package schema declares response validators for the endpoint catalog.
//
// Validators consume date-normalized payloads with the upstream key casing
// and produce typed values; schema mismatches surface as goskema issue
// lists, which the error classifier tags as validation failures.
package schema

import (
	"context"

	goskema "github.com/reoring/goskema"
	g "github.com/reoring/goskema/dsl"

	"github.com/ferryline/wsdot/internal/endpoint"
)

type typedValidator[T any] struct {
	schema goskema.Schema[T]
}

func (v typedValidator[T]) Parse(ctx context.Context, data any) (any, error) {
	out, err := v.schema.Parse(ctx, data)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Typed adapts a goskema schema to the pipeline's pluggable validator contract.
func Typed[T any](s goskema.Schema[T]) endpoint.Validator {
	return typedValidator[T]{schema: s}
}

// List adapts an element schema to a validator over array-shaped payloads.
func List[T any](elem goskema.Schema[T]) endpoint.Validator {
	return Typed[[]T](g.Array(elem))
}
