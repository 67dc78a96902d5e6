package auth

import (
	"context"

	"printhub/pkg/model"
)

type identityKey struct{}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID    string
	Email     string
	Role      model.Role
	SessionID string
}

func (i Identity) IsShopOwner() bool {
	return i.Role == model.RoleShopOwner
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok && id.UserID != ""
}

func IdentityFromClaims(c *Claims) Identity {
	return Identity{
		UserID:    c.Subject,
		Email:     c.Email,
		Role:      c.Role,
		SessionID: c.SessionID,
	}
}
