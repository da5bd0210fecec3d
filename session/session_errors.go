package session

import "errors"

// ErrInvalidCredentials reports a login the server rejected, or a login
// response too malformed to trust. The prior session, if any, is left
// untouched.
var ErrInvalidCredentials = errors.New("invalid credentials")
