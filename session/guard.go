package session

import (
	"github.com/pkg/errors"
	"github.com/portfoliolabs/go-admin-client/nav"
)

// Decision is the outcome of an admission check. Either Allowed is true, or
// RedirectTo names the view the caller should navigate to instead. The guard
// itself never navigates.
type Decision struct {
	Allowed    bool
	RedirectTo string
}

// Guard gates entry into the administrative navigation subtree. It is pure:
// evaluating it mutates nothing, so the host may consult it on every
// navigation attempt.
type Guard struct {
	sessions *Manager
}

// NewGuard creates a Guard over the given session manager.
func NewGuard(sessions *Manager) (*Guard, error) {
	if sessions == nil {
		return nil, errors.New("[NewGuard] sessions manager is required")
	}
	return &Guard{sessions: sessions}, nil
}

// CanEnter reports whether navigation into the administrative area may
// proceed. When no valid session exists it returns a redirect to the login
// view.
func (g *Guard) CanEnter() Decision {
	if g.sessions.IsAuthenticated() {
		return Decision{Allowed: true}
	}
	return Decision{RedirectTo: nav.LoginPath}
}
