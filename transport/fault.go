package transport

import (
	"net/http"

	"github.com/portfoliolabs/go-admin-client/nav"
)

// SessionTerminator ends the active session without navigating.
type SessionTerminator interface {
	ClearSession()
}

// SessionTerminatorFunc adapts a function to SessionTerminator.
type SessionTerminatorFunc func()

// ClearSession implements SessionTerminator.
func (f SessionTerminatorFunc) ClearSession() { f() }

// FaultHandler observes every response for a 401 or 403. What happens next
// depends on the active view, not on the failing request's target:
//
//   - On an administrative location the session is terminated exactly once
//     and the navigator is sent to the login view carrying the interrupted
//     location as a return target.
//   - On a public location nothing is touched. A public view may call a
//     protected endpoint opportunistically; its failure must not end a
//     session or drag a visitor to a login screen they never asked for.
//
// The response (or error) always reaches the caller unchanged; this stage
// never swallows faults, authorization-related or otherwise.
func FaultHandler(sessions SessionTerminator, navigator nav.Navigator) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil || resp == nil {
				return resp, err
			}
			if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
				return resp, err
			}

			location := navigator.CurrentPath()
			if !nav.IsAdminLocation(location) {
				return resp, err
			}

			sessions.ClearSession()
			navigator.Navigate(nav.LoginRedirect(location))
			return resp, err
		})
	}
}
