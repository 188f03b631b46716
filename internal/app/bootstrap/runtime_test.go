package bootstrap

import (
	"context"
	"testing"

	appconfig "github.com/driveline-ai/fleetguard/internal/config"
	"github.com/driveline-ai/fleetguard/internal/fleet"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

func TestBuildRedisClientDisabledWithoutAddr(t *testing.T) {
	cfg := &appconfig.Config{}
	if client := BuildRedisClient(context.Background(), cfg, logging.Default(), false); client != nil {
		t.Fatalf("expected nil client without redis addr")
	}
	if client := BuildRedisClient(context.Background(), nil, nil, false); client != nil {
		t.Fatalf("expected nil client for nil config")
	}
}

func TestBuildAuditPipelineWithoutSinks(t *testing.T) {
	stream, monitor := BuildAuditPipeline(&appconfig.Config{AuditStreamMaxItems: 10}, nil, nil, logging.Default())
	if stream == nil || monitor == nil {
		t.Fatalf("expected stream and monitor")
	}
	if monitor.Stream() != stream {
		t.Fatalf("monitor should observe the returned stream")
	}
}

func TestBuildFleetStoreFallsBackToMemory(t *testing.T) {
	store := BuildFleetStore(nil)
	if _, ok := store.(*fleet.MemoryStore); !ok {
		t.Fatalf("expected in-memory store without redis, got %T", store)
	}
}

func TestBuildBookingsStoreFallsBackToMemory(t *testing.T) {
	store, closeStore, err := BuildBookingsStore(context.Background(), &appconfig.Config{}, logging.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closeStore()
	if store == nil {
		t.Fatalf("expected a store")
	}
}

func TestOpenArchiveDBDisabled(t *testing.T) {
	if db := OpenArchiveDB(&appconfig.Config{AuditArchive: false, DatabaseURL: "postgres://x"}, nil); db != nil {
		t.Fatalf("expected nil db when archival disabled")
	}
	if db := OpenArchiveDB(&appconfig.Config{AuditArchive: true}, nil); db != nil {
		t.Fatalf("expected nil db without database url")
	}
}
