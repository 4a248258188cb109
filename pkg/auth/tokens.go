package auth

import "context"

// TokenGenerator abstracts token creation (e.g., JWT).
// It allows use cases to stay framework-agnostic.
type TokenGenerator interface {
	Generate(ctx context.Context, user User) (string, error)
}

// TokenVerifier checks a presented token and returns the identity it carries.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// TokenIssuer is implemented by the JWT package.
type TokenIssuer interface {
	TokenGenerator
	TokenVerifier
}
