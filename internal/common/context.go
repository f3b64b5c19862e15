package common

import "context"

type contextKey string

const contextKeyBatchID contextKey = "batch_id"

// WithBatchID adds a batch ID to the context for log correlation.
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, contextKeyBatchID, batchID)
}

// BatchIDFromContext extracts the batch ID from context.
func BatchIDFromContext(ctx context.Context) string {
	if batchID, ok := ctx.Value(contextKeyBatchID).(string); ok {
		return batchID
	}
	return ""
}
