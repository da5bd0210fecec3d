// Package storage provides the durable store behind the session manager.
//
// A Store holds independent string entries. The session subsystem uses three
// of them (credential, serialized identity, expiry deadline); all-or-nothing
// consistency across the three is enforced by the session manager's
// InitializeAuth, not by the store itself.
package storage

import "errors"

// Entry keys used by the session manager. The names match what the web
// client stored so an existing deployment's persisted state stays readable.
const (
	KeyToken      = "auth_token"
	KeyUser       = "auth_user"
	KeyExpiration = "auth_expiration"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("entry not found")

// Store persists string entries between process runs.
//
// Delete is idempotent: removing an absent entry is not an error.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
