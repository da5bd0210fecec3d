// Package session owns the administrative session lifecycle: login, logout,
// forced password change, expiry, and restoration at process start. The
// Manager is the only writer of session state; everything else observes it
// through snapshots.
package session

import (
	"time"

	"github.com/portfoliolabs/go-admin-client/api"
	"github.com/portfoliolabs/go-admin-client/internal/utils"
)

// Identity is the authenticated administrative user. It shares its lifetime
// with the credential: set together on login, cleared together on logout.
type Identity struct {
	ID                     string `json:"id"`
	Username               string `json:"username"`
	Role                   string `json:"role"`
	RequiresPasswordChange bool   `json:"requiresPasswordChange,omitempty"`
}

// Session is a point-in-time snapshot of the authentication state.
//
// Invariants: Token is non-empty iff Identity is non-nil; when Token is set,
// ExpiresAt holds the wall-clock deadline computed at login time. That
// deadline, not the credential's own exp claim, decides session validity.
type Session struct {
	Token     string
	Identity  *Identity
	ExpiresAt time.Time
}

// Active reports whether the snapshot holds a credential. It says nothing
// about expiry; use Manager.IsAuthenticated for that.
func (s Session) Active() bool {
	return s.Token != ""
}

func identityFromUser(user api.User) Identity {
	return Identity{
		ID:                     user.ID,
		Username:               user.Username,
		Role:                   user.Role,
		RequiresPasswordChange: utils.Value(user.RequiresPasswordChange),
	}
}
