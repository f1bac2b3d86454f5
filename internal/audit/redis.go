package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"timevault/internal/domain/repositories"
	"timevault/internal/metrics"
)

// recordTimeout bounds one delivery attempt. Audit is best-effort: a slow
// or unreachable broker must never stall the mutation path behind it.
const recordTimeout = 5 * time.Second

// RedisSink publishes audit events to a Redis stream. Downstream consumers
// (compliance export, activity feeds) read the stream at their own pace.
type RedisSink struct {
	rdb    *redis.Client
	stream string
	logger *slog.Logger
}

// NewRedisSink connects to Redis and verifies the connection.
func NewRedisSink(url, stream string, logger *slog.Logger) (*RedisSink, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisSink{rdb: rdb, stream: stream, logger: logger}, nil
}

// Record appends the event to the stream. Failures are logged and counted,
// never surfaced: the mutation that produced the event already committed.
func (s *RedisSink) Record(ctx context.Context, event repositories.AuditEvent) {
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("audit event marshal failed", "error", err, "entity_id", event.EntityID)
		metrics.ObserveAuditFailure()
		return
	}

	err = s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"tenant_id": event.TenantID,
			"action":    event.Action,
			"event":     string(payload),
		},
	}).Err()
	if err != nil {
		s.logger.Error("audit event delivery failed", "error", err, "entity_id", event.EntityID)
		metrics.ObserveAuditFailure()
	}
}

// Close closes the Redis connection
func (s *RedisSink) Close() error {
	return s.rdb.Close()
}
