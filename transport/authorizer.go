package transport

import (
	"net/http"
	"strings"
)

// TokenSource supplies the current bearer credential, if any.
type TokenSource interface {
	Token() string
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func() string

// Token implements TokenSource.
func (f TokenSourceFunc) Token() string { return f() }

// Authorizer attaches "Authorization: Bearer <token>" to every request whose
// path falls under protectedPrefix, and only those. Requests outside the
// prefix pass through unmodified even when a credential exists, so the token
// never reaches third-party or public endpoints. With no credential the
// request proceeds unauthenticated; the server's rejection is the intended
// outcome, not a pipeline error.
func Authorizer(tokens TokenSource, protectedPrefix string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripFunc(func(req *http.Request) (*http.Response, error) {
			token := tokens.Token()
			if token == "" || !strings.HasPrefix(req.URL.Path, protectedPrefix) {
				return next.RoundTrip(req)
			}

			// RoundTrippers must not mutate the caller's request.
			authorized := req.Clone(req.Context())
			authorized.Header.Set("Authorization", "Bearer "+token)
			return next.RoundTrip(authorized)
		})
	}
}
