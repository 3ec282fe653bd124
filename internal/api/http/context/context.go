package context

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	userIDKey contextKey = iota
	requestIDKey
	routeKey
)

// Manager represents an HTTP request context manager for user ID operations.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetUserIDToContext returns a copy of ctx carrying the authenticated user ID.
func (m *Manager) SetUserIDToContext(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserIDFromContext retrieves the authenticated user ID.
//
// Returns the user UUID and a boolean indicating if a non-nil user ID was found.
func (m *Manager) GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// WithRequestID returns a copy of ctx carrying the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request id set by the logging middleware, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Route is filled in by the router with the template of the matched route.
type Route struct {
	Template string
}

// WithRoute returns a copy of ctx carrying an empty Route for the router to fill.
func WithRoute(ctx context.Context) (context.Context, *Route) {
	route := &Route{}
	return context.WithValue(ctx, routeKey, route), route
}

// RouteFromContext returns the Route placed by WithRoute, or nil.
func RouteFromContext(ctx context.Context) *Route {
	route, _ := ctx.Value(routeKey).(*Route)
	return route
}
