// Package transport composes the client-side request pipeline. Each stage
// wraps an http.RoundTripper; Chain applies stages in a fixed order around
// the real transport, which is the only composition point the pipeline
// needs.
package transport

import "net/http"

// RoundTripFunc adapts a function to http.RoundTripper.
type RoundTripFunc func(*http.Request) (*http.Response, error)

// RoundTrip implements http.RoundTripper.
func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware wraps a RoundTripper with one pipeline stage.
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain applies middleware around base in reverse order, so the first stage
// listed sees the request first and the response last. A nil base means
// http.DefaultTransport.
func Chain(base http.RoundTripper, mw ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	chained := base
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}
