package api

import (
	"fmt"
	"net/http"
)

// Error is a server-reported request failure. Message carries the server's
// response body verbatim so callers can surface it to the user unchanged.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsAuthorizationFault reports whether the failure is a 401 or 403.
func (e *Error) IsAuthorizationFault() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}
