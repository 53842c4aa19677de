package ownercontext

import (
	"context"
	"strings"
)

const (
	RoleFarmer = "farmer"
	RoleAdmin  = "admin"
)

// Owner is the authenticated principal a request acts for. ID is the subject
// issued by the external auth provider.
type Owner struct {
	ID   string
	Role string
}

func (o Owner) IsAdmin() bool {
	return o.Role == RoleAdmin
}

type ownerContextKey struct{}

// WithOwner stores the owner in the context.
func WithOwner(ctx context.Context, owner Owner) context.Context {
	owner.ID = strings.TrimSpace(owner.ID)
	owner.Role = strings.ToLower(strings.TrimSpace(owner.Role))
	if owner.Role == "" {
		owner.Role = RoleFarmer
	}
	return context.WithValue(ctx, ownerContextKey{}, owner)
}

// OwnerFromContext returns the owner, if set.
func OwnerFromContext(ctx context.Context) (Owner, bool) {
	if ctx == nil {
		return Owner{}, false
	}
	owner, ok := ctx.Value(ownerContextKey{}).(Owner)
	if !ok || owner.ID == "" {
		return Owner{}, false
	}
	return owner, true
}

// OwnerIDFromContext returns only the owner identifier.
func OwnerIDFromContext(ctx context.Context) (string, bool) {
	owner, ok := OwnerFromContext(ctx)
	if !ok {
		return "", false
	}
	return owner.ID, true
}
