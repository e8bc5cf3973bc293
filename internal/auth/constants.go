package auth

const (
	ContextKeyIdentity = "identity"

	headerAuthorization = "Authorization"

	bearerScheme    = "bearer"
	authHeaderParts = 2
)

const (
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgMissingSubject          = "token has no subject"
	msgIdentityNotResolved     = "identity not resolved"
	msgInvalidIdentityCtx      = "invalid identity in context"
	msgBearerRequired          = "authentication required"
)
