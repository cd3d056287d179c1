package middleware

import "context"

type contextKey int

const (
	ctxIdentity contextKey = iota
	ctxRequestID
)

// identity is the authenticated caller as read from the access token.
type identity struct {
	userID string
	role   string
	name   string
}

func identityFrom(ctx context.Context) identity {
	if ctx == nil {
		return identity{}
	}
	id, _ := ctx.Value(ctxIdentity).(identity)
	return id
}

func UserIDFromContext(ctx context.Context) string { return identityFrom(ctx).userID }

func RoleFromContext(ctx context.Context) string { return identityFrom(ctx).role }

// UserNameFromContext returns the display name carried by the access token.
func UserNameFromContext(ctx context.Context) string { return identityFrom(ctx).name }

// WithIdentity injects the authenticated caller into the context.
func WithIdentity(ctx context.Context, userID, role, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, identity{userID: userID, role: role, name: name})
}

// RequestIDFromContext returns the id assigned by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(ctxRequestID).(string)
	return v
}
