package notifications

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisNotifier_NilClientIsNoop(t *testing.T) {
	n := NewRedisNotifier(nil)
	assert.NoError(t, n.Publish(context.Background(), NewEvent(EventNewPost, 1, nil)))
	assert.NoError(t, n.StartSubscriber(context.Background(), func(Event) {}))
}

func TestRedisNotifier_BridgeIntoBus(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewBus()
	sub := bus.Subscribe("test", 8)
	defer sub.Close()

	n := NewRedisNotifier(rdb)
	require.NoError(t, n.Bridge(ctx, bus))

	require.NoError(t, n.Publish(ctx, NewEvent(EventPostApproved, 42, map[string]any{"status": "published"})))

	var got Event
	assert.Eventually(t, func() bool {
		select {
		case got = <-sub.C:
			return true
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)

	assert.Equal(t, EventPostApproved, got.Type)
	assert.Equal(t, uint(42), got.PostID)
	payload, ok := got.Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "published", payload["status"])
}

func TestRedisNotifier_SkipsMalformedPayload(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan Event, 4)
	n := NewRedisNotifier(rdb)
	require.NoError(t, n.StartSubscriber(ctx, func(e Event) { received <- e }))

	require.NoError(t, rdb.Publish(ctx, BoardChannel, "not json").Err())
	require.NoError(t, n.Publish(ctx, NewEvent(EventPostDeleted, 3, nil)))

	assert.Eventually(t, func() bool { return len(received) == 1 }, testEventuallyTimeout, testPollInterval)
	e := <-received
	assert.Equal(t, EventPostDeleted, e.Type)
}
