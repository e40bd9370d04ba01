package auth

import "context"

// Identity is the per-request authentication state derived from the
// Authorization header. UserID is set only when Authenticated is true.
type Identity struct {
	Authenticated bool
	UserID        string
	Email         string
}

// DeriveIdentity inspects an Authorization header value and returns the
// resulting identity. It never fails: a missing, malformed, expired or
// forged credential simply yields an anonymous identity. Endpoints and
// resolvers that require authentication enforce it themselves.
func DeriveIdentity(header string, mgr *JWTManager) Identity {
	token, err := ParseBearer(header)
	if err != nil {
		return Identity{}
	}

	userID, email, err := mgr.Parse(token)
	if err != nil {
		return Identity{}
	}

	return Identity{Authenticated: true, UserID: userID, Email: email}
}

type identityCtxKey struct{}

// WithIdentity returns a context carrying the request identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFrom returns the identity stored in ctx, or an anonymous one
// when the auth middleware never ran.
func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityCtxKey{}).(Identity)
	return id
}
