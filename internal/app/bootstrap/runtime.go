package bootstrap

import (
	"context"
	"crypto/tls"
	"database/sql"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/driveline-ai/fleetguard/internal/audit"
	"github.com/driveline-ai/fleetguard/internal/bookings"
	appconfig "github.com/driveline-ai/fleetguard/internal/config"
	"github.com/driveline-ai/fleetguard/internal/fleet"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildAuditPipeline wires the capped event stream and the access monitor,
// attaching whichever durable sinks the environment provides: a Redis sink
// when Redis is up, and a Postgres archive when enabled.
func BuildAuditPipeline(cfg *appconfig.Config, redisClient *redis.Client, archiveDB *sql.DB, logger *logging.Logger) (*audit.Stream, *audit.Monitor) {
	maxItems := 0
	if cfg != nil {
		maxItems = cfg.AuditStreamMaxItems
	}
	stream := audit.NewStream(maxItems)

	var sinks []audit.Sink
	if redisClient != nil {
		sinks = append(sinks, audit.NewRedisSink(redisClient, int64(maxItems)))
	}
	if archiveDB != nil {
		sinks = append(sinks, audit.NewArchive(archiveDB))
	}

	opts := []audit.MonitorOption{}
	if len(sinks) > 0 {
		opts = append(opts, audit.WithSinks(sinks...))
	}
	return stream, audit.NewMonitor(stream, logger, opts...)
}

// OpenArchiveDB opens the Postgres handle for the audit archive, or returns
// nil when archival is disabled or no database is configured.
func OpenArchiveDB(cfg *appconfig.Config, logger *logging.Logger) *sql.DB {
	if cfg == nil || !cfg.AuditArchive || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Warn("audit archive unavailable", "error", err)
		return nil
	}
	return db
}

// BuildFleetStore returns the vehicle state store: Redis-backed when a
// client is available, in-memory otherwise.
func BuildFleetStore(redisClient *redis.Client) fleet.Store {
	if redisClient != nil {
		return fleet.NewRedisStore(redisClient)
	}
	return fleet.NewMemoryStore()
}

// BuildBookingsStore returns the appointment store and a close function.
// With a database configured it is Postgres-backed, otherwise in-memory.
func BuildBookingsStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (bookings.Store, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return bookings.NewMemoryStore(), func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("bookings store backed by postgres")
	return bookings.NewRepository(pool), pool.Close, nil
}
