package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	userIDKey   contextKey = "userID"
	tenantIDKey contextKey = "tenantID"
)

// WithIdentity adds the authenticated user and tenant to the request context
func WithIdentity(r *http.Request, userID, tenantID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, tenantIDKey, tenantID)
	return r.WithContext(ctx)
}

// GetUserID retrieves userID from context, returns empty string if not found
func GetUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// GetTenantID retrieves tenantID from context, returns empty string if not found
func GetTenantID(r *http.Request) string {
	tenantID, _ := r.Context().Value(tenantIDKey).(string)
	return tenantID
}
