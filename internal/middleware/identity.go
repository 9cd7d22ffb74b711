package middleware

import "context"

type ctxKey string

const userIDKey ctxKey = "uid"

// WithUserID stores the authenticated caller in ctx.
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

// UserID returns the caller set by Auth or GinAuth.
func UserID(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userIDKey).(string)
	return uid, ok && uid != ""
}
