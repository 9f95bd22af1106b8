// Package transport performs the network fetch behind the pipeline via one
// of two strategies: a direct HTTP request or a script-relay round trip.
package transport

import "context"

// Request describes one fetch the pipeline hands to a strategy.
type Request struct {
	// URL is the fully built endpoint URL including the credential.
	URL string
	// Endpoint is the endpoint identity, used for error context only.
	Endpoint string
	// ExpectsList tells the relay strategy to normalize empty payloads to
	// an empty array rather than an empty object.
	ExpectsList bool
}

// Strategy fetches the raw response body for a request. Failures are
// reported as errors the classifier can categorize, never as sentinels.
type Strategy interface {
	Fetch(ctx context.Context, req Request) (string, error)
}
