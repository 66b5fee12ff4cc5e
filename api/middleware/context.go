package middleware

import "context"

type contextKey string

const ctxAccountID contextKey = "account_id"

// AccountIDFromContext returns the authenticated account id or zero when the
// request was not authenticated.
func AccountIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxAccountID).(int64); ok {
		return v
	}
	return 0
}

// WithAccountID injects the account identifier into the context.
func WithAccountID(ctx context.Context, accountID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccountID, accountID)
}
