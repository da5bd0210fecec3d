// Package nav models the navigation boundary between the session subsystem
// and the host application's router. The subsystem only ever needs to know
// the active location and to request a view change; how views render is the
// host's business.
package nav

import (
	"net/url"
	"strings"
	"sync"
)

// Route path constants. All paths the session subsystem navigates to or
// tests against are defined here to ensure consistency and prevent typos.
const (
	// AdminPrefix is the navigation subtree requiring an authenticated session.
	AdminPrefix = "/admin"
	// LoginPath is the administrative login view.
	LoginPath = "/admin/login"
	// ReturnURLParam carries the location to restore after re-authentication.
	ReturnURLParam = "returnUrl"
)

// Navigator performs view navigation and reports the active location.
type Navigator interface {
	// Navigate switches the active view to path.
	Navigate(path string)
	// CurrentPath returns the path of the active view.
	CurrentPath() string
}

// IsAdminLocation reports whether path lies inside the administrative
// navigation subtree.
func IsAdminLocation(path string) bool {
	return strings.HasPrefix(path, AdminPrefix)
}

// LoginRedirect builds the login path carrying returnURL so the host can
// restore the interrupted location after re-authentication.
func LoginRedirect(returnURL string) string {
	if returnURL == "" {
		return LoginPath
	}
	query := url.Values{ReturnURLParam: {returnURL}}
	return LoginPath + "?" + query.Encode()
}

// Recorder is an in-memory Navigator for tests and headless hosts. It
// records every navigation.
type Recorder struct {
	mu      sync.Mutex
	current string
	history []string
}

// NewRecorder creates a Recorder positioned at start.
func NewRecorder(start string) *Recorder {
	return &Recorder{current: start}
}

// Navigate switches the active location to path and records it.
func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = path
	r.history = append(r.history, path)
}

// CurrentPath returns the active location.
func (r *Recorder) CurrentPath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns every navigation performed, oldest first.
func (r *Recorder) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}
