package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyEmail  ctxKey = "email"
	CtxKeyRole   ctxKey = "role"
)

// UserIDFromContext returns the authenticated user's ID, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyUserID).(string)
	return v, ok
}

// RoleFromContext returns the authenticated user's role, if any.
func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyRole).(string)
	return v, ok
}
