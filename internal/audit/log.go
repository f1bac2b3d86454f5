package audit

import (
	"context"
	"log/slog"

	"timevault/internal/domain/repositories"
)

// LogSink writes audit events to the structured log. It is the fallback
// sink when no external audit transport is configured.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a log-backed audit sink
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Record logs the event. Never fails.
func (s *LogSink) Record(_ context.Context, event repositories.AuditEvent) {
	s.logger.Info("audit",
		"tenant_id", event.TenantID,
		"user_id", event.UserID,
		"action", event.Action,
		"entity_type", event.EntityType,
		"entity_id", event.EntityID,
		"occurred_at", event.OccurredAt,
	)
}
