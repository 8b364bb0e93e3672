package auth

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// Identity is the per-request result of credential validation. It is never
// persisted; the dispatcher consumes it to authorize or reject an operation.
type Identity struct {
	Principal uuid.UUID `json:"principal"`
	Scopes    []string  `json:"scopes"`
}

func (i Identity) HasScope(scope string) bool {
	return slices.Contains(i.Scopes, scope)
}

type identityKey struct{}

func AttachIdentityToContext(c context.Context, identity Identity) context.Context {
	return context.WithValue(c, identityKey{}, identity)
}

func IdentityFromContext(c context.Context) (Identity, bool) {
	identity, ok := c.Value(identityKey{}).(Identity)
	return identity, ok
}
