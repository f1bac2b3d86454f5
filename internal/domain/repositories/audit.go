package repositories

import (
	"context"
	"time"
)

// AuditEvent is a before/after snapshot of one committed mutation.
type AuditEvent struct {
	TenantID   string      `json:"tenant_id"`
	UserID     string      `json:"user_id"`
	Action     string      `json:"action"` // "create", "update", "delete"
	EntityType string      `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	Before     interface{} `json:"before,omitempty"`
	After      interface{} `json:"after,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// AuditSink receives audit events after successful mutations. Delivery is
// best-effort: implementations must never block the caller for long and a
// delivery failure must never surface to the mutation that triggered it.
type AuditSink interface {
	Record(ctx context.Context, event AuditEvent)
}
