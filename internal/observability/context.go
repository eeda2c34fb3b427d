package observability

import (
	"context"
)

// Context keys for observability data.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	keywordKey   contextKey = "keyword"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithKeyword adds the search keyword to the context.
func WithKeyword(ctx context.Context, keyword string) context.Context {
	return context.WithValue(ctx, keywordKey, keyword)
}

// KeywordFromContext retrieves the search keyword from context.
// Returns empty string if not present.
func KeywordFromContext(ctx context.Context) string {
	if v := ctx.Value(keywordKey); v != nil {
		if keyword, ok := v.(string); ok {
			return keyword
		}
	}
	return ""
}
