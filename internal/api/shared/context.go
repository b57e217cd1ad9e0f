package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/bookreviews-api/internal/domain"
)

// ContextKey is the type of request context keys owned by the API layer.
type ContextKey string

const (
	// IdentityContextKey holds the authenticated caller's Identity.
	IdentityContextKey ContextKey = "identity"

	// TraceIDKey holds the per-request trace ID.
	TraceIDKey ContextKey = "traceID"
)

// Identity is the authenticated caller as described by a validated access token.
type Identity struct {
	UserID   int64
	Username string
	Email    string
	Role     domain.Role
}

// IsAdmin reports whether the caller holds the Admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == domain.RoleAdmin
}

// WithIdentity stores id in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, id)
}

// IdentityFromContext returns the caller stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityContextKey).(Identity)
	if !ok || id.UserID <= 0 {
		return Identity{}, false
	}
	return id, true
}

// SetTraceID adds a fresh trace ID to ctx.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, NewTraceID())
}

// GetTraceID returns the trace ID stored in ctx, or "" if there is none.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// NewTraceID returns a random 32 character hex string.
func NewTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
