package middleware

import "context"

type contextKey string

const (
	ctxAccountID contextKey = "account_id"
	ctxStore     contextKey = "store"
)

func AccountIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccountID).(string); ok {
		return v
	}
	return ""
}

func StoreFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxStore).(string); ok {
		return v
	}
	return ""
}

// WithAccountID injects the operator account identifier into the context.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccountID, accountID)
}

// WithStore injects the store partition key into the context for downstream handlers.
func WithStore(ctx context.Context, store string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStore, store)
}
