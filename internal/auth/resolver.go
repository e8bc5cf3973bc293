package auth

import (
	"context"
	"strings"
	"time"

	"download-service/pkg/deadline"
	apperrors "download-service/pkg/errors"
)

// Resolver turns a raw Authorization header into an Identity.
type Resolver struct {
	verifier Verifier
	timeout  time.Duration
}

func NewResolver(verifier Verifier, timeout time.Duration) *Resolver {
	return &Resolver{verifier: verifier, timeout: timeout}
}

// Resolve returns (nil, nil) for an empty header: the caller is a guest.
// A header without a bearer token yields NoCredential; a token that fails
// verification or does not verify in time yields InvalidCredential.
func (r *Resolver) Resolve(ctx context.Context, header string) (*Identity, error) {
	token, present, ok := ParseBearer(header)
	if !present {
		return nil, nil
	}
	if !ok {
		return nil, apperrors.NoCredential()
	}

	identity, err := deadline.Call(ctx, r.timeout, func(ctx context.Context) (*Identity, error) {
		return r.verifier.Verify(ctx, token)
	})
	if err != nil {
		return nil, apperrors.InvalidCredential(err)
	}

	return identity, nil
}

// ParseBearer splits an Authorization header. present reports whether the
// header carried anything at all; ok reports whether it was a bearer token.
func ParseBearer(header string) (token string, present, ok bool) {
	if strings.TrimSpace(header) == "" {
		return "", false, false
	}

	parts := strings.Fields(header)
	if len(parts) != authHeaderParts || strings.ToLower(parts[0]) != bearerScheme {
		return "", true, false
	}

	return parts[1], true, true
}
