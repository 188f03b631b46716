package audit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisSinkRoundTrip(t *testing.T) {
	client := newTestRedis(t)
	sink := NewRedisSink(client, 100)

	alert := Alert{
		ID:        "al-1",
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Severity:  SeverityHigh,
		Actor:     "voice",
		Reason:    "Unauthorized resource: rca:write",
		Event:     Event{ID: "ev-1", Resource: "rca:write"},
	}

	require.NoError(t, sink.RecordEvent(context.Background(), alert.Event))
	require.NoError(t, sink.RecordAlert(context.Background(), alert))

	got, err := sink.TailAlerts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, alert.ID, got[0].ID)
	assert.Equal(t, SeverityHigh, got[0].Severity)
	assert.Equal(t, "rca:write", got[0].Event.Resource)
}

func TestRedisSinkTrimsToMaxItems(t *testing.T) {
	client := newTestRedis(t)
	sink := NewRedisSink(client, 3)

	for i := 0; i < 6; i++ {
		require.NoError(t, sink.RecordAlert(context.Background(), Alert{
			ID:       "al",
			Severity: SeverityMedium,
			Reason:   "Spike in actions",
		}))
	}

	got, err := sink.TailAlerts(context.Background(), 50)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRedisSinkNilClient(t *testing.T) {
	sink := NewRedisSink(nil, 10)
	assert.Nil(t, sink)
	// A nil sink ignores writes instead of panicking.
	require.NoError(t, sink.RecordEvent(context.Background(), Event{}))
	require.NoError(t, sink.RecordAlert(context.Background(), Alert{}))
}
