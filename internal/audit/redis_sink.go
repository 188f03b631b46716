package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	redisEventsKey = "audit:events"
	redisAlertsKey = "audit:alerts"
)

// RedisSink mirrors the audit streams into two capped Redis lists so other
// processes can tail them. LTRIM bounds retention.
type RedisSink struct {
	redis    *redis.Client
	maxItems int64
}

// NewRedisSink creates a sink retaining at most maxItems entries per list.
func NewRedisSink(redisClient *redis.Client, maxItems int64) *RedisSink {
	if redisClient == nil {
		return nil
	}
	if maxItems <= 0 {
		maxItems = defaultStreamMax
	}
	return &RedisSink{redis: redisClient, maxItems: maxItems}
}

var _ Sink = (*RedisSink)(nil)

// RecordEvent pushes an event onto the events list.
func (s *RedisSink) RecordEvent(ctx context.Context, ev Event) error {
	if s == nil || s.redis == nil {
		return nil
	}
	return s.push(ctx, redisEventsKey, ev)
}

// RecordAlert pushes an alert onto the alerts list.
func (s *RedisSink) RecordAlert(ctx context.Context, a Alert) error {
	if s == nil || s.redis == nil {
		return nil
	}
	return s.push(ctx, redisAlertsKey, a)
}

func (s *RedisSink) push(ctx context.Context, key string, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("audit: marshal %s entry: %w", key, err)
	}
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -s.maxItems, -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("audit: push %s entry: %w", key, err)
	}
	return nil
}

// TailAlerts returns up to limit of the most recently mirrored alerts.
func (s *RedisSink) TailAlerts(ctx context.Context, limit int64) ([]Alert, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	raw, err := s.redis.LRange(ctx, redisAlertsKey, -limit, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("audit: tail alerts: %w", err)
	}
	alerts := make([]Alert, 0, len(raw))
	for _, item := range raw {
		var a Alert
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			continue
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}
