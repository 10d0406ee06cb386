package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/redis/go-redis/v9"
)

// BoardChannel is the Redis channel carrying board events between processes.
const BoardChannel = "board:events"

// RedisNotifier publishes events into Redis so every process sharing the
// database sees them.
type RedisNotifier struct {
	rdb *redis.Client
}

// NewRedisNotifier creates a new RedisNotifier using the provided Redis client.
func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

// Publish implements Publisher.
func (n *RedisNotifier) Publish(ctx context.Context, e Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, BoardChannel, payload).Err()
}

// StartSubscriber subscribes to BoardChannel and calls onEvent for every
// decoded event until ctx is cancelled.
func (n *RedisNotifier) StartSubscriber(ctx context.Context, onEvent func(Event)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, BoardChannel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", BoardChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					slog.Warn("dropping malformed board event", slog.String("error", err.Error()))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in board event subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onEvent(e)
				}()
			}
		}
	}()

	return nil
}

// Bridge forwards events arriving over Redis into bus.
func (n *RedisNotifier) Bridge(ctx context.Context, bus *Bus) error {
	return n.StartSubscriber(ctx, func(e Event) {
		_ = bus.Publish(ctx, e)
	})
}
