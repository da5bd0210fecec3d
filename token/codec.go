// Package token provides best-effort decoding of the bearer credential's
// embedded claims.
//
// WARNING: nothing in this package verifies the credential's signature. The
// decoded values are advisory (display, diagnostics). Session validity is
// decided by the session manager's locally stored expiry deadline, not by
// the exp claim read here.
package token

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Payload holds the claims embedded in a credential's middle segment.
type Payload struct {
	Subject   string         // sub - identity name
	IssuedAt  int64          // iat - seconds since epoch
	ExpiresAt int64          // exp - seconds since epoch, 0 when absent
	Claims    map[string]any // every claim, including the ones above
}

// Decode extracts the payload of a credential without verifying its
// signature. Returns nil if the token shape, encoding, or payload JSON is
// malformed. Decode never panics.
func Decode(rawToken string) *Payload {
	unverified, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return nil
	}

	claims, ok := unverified.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil
	}

	sub, _ := claims["sub"].(string)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)

	return &Payload{
		Subject:   sub,
		IssuedAt:  int64(iat),
		ExpiresAt: int64(exp),
		Claims:    claims,
	}
}

// IsExpired reports whether the credential's own exp claim has passed. A
// credential that cannot be decoded, or that carries no exp claim, counts
// as expired.
func IsExpired(rawToken string) bool {
	payload := Decode(rawToken)
	if payload == nil || payload.ExpiresAt == 0 {
		return true
	}
	return !NowTimeFunc().Before(time.Unix(payload.ExpiresAt, 0))
}

// ExpirationTime returns the exp claim as wall-clock time, or the zero time
// when the credential is malformed or carries no expiry.
func ExpirationTime(rawToken string) time.Time {
	payload := Decode(rawToken)
	if payload == nil || payload.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(payload.ExpiresAt, 0)
}

// Subject returns the sub claim, or "" when the credential is malformed.
func Subject(rawToken string) string {
	payload := Decode(rawToken)
	if payload == nil {
		return ""
	}
	return payload.Subject
}
