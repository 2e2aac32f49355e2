package httpx

import "context"

type ctxKey string

// CtxKeyUserID holds the authenticated subject once authentication succeeds.
const CtxKeyUserID ctxKey = "user_id"

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CtxKeyUserID).(string)
	return id, ok && id != ""
}
