package transport

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Logging emits one debug line per request with method, path, status, and
// duration. Headers are never logged, so the pipeline cannot leak the
// Authorization value.
func Logging(logger zerolog.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)

			event := logger.Debug().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Dur("duration", time.Since(start))
			if err != nil {
				event.Err(err).Msg("request failed")
				return resp, err
			}
			event.Int("status", resp.StatusCode).Msg("request completed")
			return resp, err
		})
	}
}
