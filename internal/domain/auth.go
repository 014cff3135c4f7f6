package domain

import "time"

// TokenIssuer issues session tokens (e.g. JWT) for an authenticated user.
// Session bootstrap itself happens outside this layer.
type TokenIssuer interface {
	Issue(userID string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a session token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}
