// Package endpoint defines the static configuration records describing upstream API endpoints.
package endpoint

import (
	"context"

	"github.com/ferryline/wsdot/config"
)

// Validator parses untyped data against a declared shape. Implementations
// must return an error distinguishable as a validation failure on mismatch.
type Validator interface {
	Parse(ctx context.Context, v any) (any, error)
}

// Params carries the caller-supplied parameter values for one fetch.
// Supported value kinds: string, bool, integers, floats, and time.Time.
type Params map[string]any

// Descriptor is the immutable configuration record for one upstream endpoint.
// Descriptors are created once at catalog construction and never mutated.
type Descriptor struct {
	Family       config.Family
	Name         string
	URLTemplate  string
	Input        Validator
	Output       Validator
	SampleParams Params
	Policy       RefreshPolicy
	Description  string

	// FlushFamily names the service family whose cache flush monitor
	// invalidates this endpoint's cached results. Empty means the endpoint
	// is not flush-wired and polls on its own policy.
	FlushFamily config.Family
	// IsFlushProbe marks the endpoint as a cache flush date probe. Probes
	// are polled directly and never wired to their own monitor.
	IsFlushProbe bool
	// ExpectsList marks endpoints whose payload is list-shaped, so empty
	// relay responses normalize to an empty array rather than an object.
	ExpectsList bool
}

// ID returns the endpoint's stable identity used in cache keys and errors.
func (d Descriptor) ID() string {
	return string(d.Family) + "/" + d.Name
}
