package auth

import "context"

// Identity is the authenticated requester. It lives for one request.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
}

// Verifier checks a bearer token and returns the identity it names.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
