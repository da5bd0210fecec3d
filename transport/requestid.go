package transport

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-Id"

// RequestID stamps every outgoing request with a unique correlation ID so
// server logs can be tied back to client activity. A request that already
// carries one keeps it.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) != "" {
				return next.RoundTrip(req)
			}
			stamped := req.Clone(req.Context())
			stamped.Header.Set(RequestIDHeader, uuid.New().String())
			return next.RoundTrip(stamped)
		})
	}
}
