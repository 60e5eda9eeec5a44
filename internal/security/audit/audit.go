package audit

import (
	"context"
	"log/slog"
)

// Logger emits structured audit events for credential and booking actions.
// Audit records may carry usernames and sub-causes that the API responses
// deliberately omit.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) event(_ context.Context, action, resource, resourceID, userID, status string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("user_id", userID),
		slog.String("status", status),
	)
}

// LogSignup records a signup attempt outcome.
func (al *Logger) LogSignup(ctx context.Context, userID, status string) {
	al.event(ctx, "signup", "user", userID, userID, status)
}

// LogLogin records a login attempt outcome.
func (al *Logger) LogLogin(ctx context.Context, userID, status string) {
	al.event(ctx, "login", "session", "", userID, status)
}

// LogBookingChange records a booking mutation.
func (al *Logger) LogBookingChange(ctx context.Context, action, bookingID, userID, status string) {
	al.event(ctx, action, "booking", bookingID, userID, status)
}

// LogDenied records an access rejection.
func (al *Logger) LogDenied(ctx context.Context, userID, reason string) {
	al.event(ctx, "access_denied", "api", reason, userID, "denied")
}
