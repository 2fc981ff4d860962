package util

import (
	"context"
)

type key string

const (
	clientIPKey = key("x-forwarded-for")
	userIDKey   = key("x-user-id")
)

// Fields returns a map of the key-value pairs that this package has set into `context`.
func Fields(ctx context.Context) map[string]interface{} {
	return map[string]interface{}{
		"request_id": GetRequestID(ctx),
		"client_ip":  GetClientIP(ctx),
		"user_id":    GetUserID(ctx),
	}
}

// WithClientIP returns a context with a client ip
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// WithUserID returns a context carrying the authenticated user id set by the
// transport layer.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// WithRequestID returns a context with request id
func WithRequestID(ctx context.Context, id string) context.Context {
	return ContextWithRequestID(ctx, id)
}

// GetClientIP returns client ip from context
// will return empty string if not present
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// GetUserID returns the user id from context
// will return empty string if not present
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// GetRequestID returns request id from context
func GetRequestID(ctx context.Context) string {
	return FromContext(ctx)
}
