package shared

import (
	"context"
	"net/http"
	"strconv"
)

// Identity is the pre-resolved caller context attached to every request.
// Authentication happens upstream; the gateway forwards the resolved user,
// role and originating terminal as headers.
type Identity struct {
	UserID     int64
	Role       string
	TerminalID string
}

// Roles understood by the broadcast and authorization layers.
const (
	RoleCashier = "cashier"
	RoleManager = "manager"
	RoleOwner   = "owner"
)

type identityKeyType struct{}

var identityKey identityKeyType

// ContextWithIdentity stores the identity in the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the identity from the context.
func IdentityFromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(identityKey).(Identity); ok {
		return id
	}
	return Identity{}
}

// IdentityFromRequest resolves the identity headers set by the auth gateway.
func IdentityFromRequest(r *http.Request) Identity {
	id := Identity{
		Role:       r.Header.Get("X-User-Role"),
		TerminalID: r.Header.Get("X-Terminal-ID"),
	}
	if raw := r.Header.Get("X-User-ID"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			id.UserID = v
		}
	}
	if id.Role == "" {
		id.Role = RoleCashier
	}
	return id
}
