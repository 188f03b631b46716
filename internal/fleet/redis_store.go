package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var fleetTracer = otel.Tracer("fleetguard/fleet")

const (
	vehicleKeyPrefix = "vehicle_state:"
	snapshotTTL      = 30 * 24 * time.Hour
)

// RedisStore is a Store backed by Redis, for deployments where reporting
// surfaces run in a separate process from ingestion.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		return nil
	}
	return &RedisStore{redis: redisClient}
}

var _ Store = (*RedisStore)(nil)

// Put overwrites the snapshot for the vehicle.
func (s *RedisStore) Put(ctx context.Context, snap Snapshot) error {
	if snap.VehicleID == "" {
		return errors.New("fleet: snapshot vehicle_id required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := fleetTracer.Start(ctx, "fleet.put_snapshot")
	defer span.End()
	span.SetAttributes(attribute.String("vehicle.id", snap.VehicleID))

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("fleet: marshal snapshot: %w", err)
	}
	if err := s.redis.Set(ctx, vehicleKey(snap.VehicleID), data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("fleet: store snapshot: %w", err)
	}
	return nil
}

// Get returns the current snapshot for the vehicle.
func (s *RedisStore) Get(ctx context.Context, vehicleID string) (*Snapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := fleetTracer.Start(ctx, "fleet.get_snapshot")
	defer span.End()
	span.SetAttributes(attribute.String("vehicle.id", vehicleID))

	data, err := s.redis.Get(ctx, vehicleKey(vehicleID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fleet: load snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("fleet: decode snapshot: %w", err)
	}
	return &snap, nil
}

func vehicleKey(vehicleID string) string {
	return vehicleKeyPrefix + vehicleID
}
