package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(c *Client) []Event {
	var out []Event
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				return out
			}
			var e Event
			if err := json.Unmarshal(msg, &e); err == nil {
				out = append(out, e)
			}
		default:
			return out
		}
	}
}

func TestHub_AudienceFiltering(t *testing.T) {
	hub := NewHub()
	public, err := hub.Register(nil, AudiencePublic)
	require.NoError(t, err)
	admin, err := hub.Register(nil, AudienceAdmin)
	require.NoError(t, err)

	hub.Broadcast(NewEvent(EventNewPost, 1, nil))
	hub.Broadcast(NewEvent(EventNewVisit, 0, map[string]any{"page_path": "/"}))

	pub := drain(public)
	require.Len(t, pub, 1)
	assert.Equal(t, EventNewPost, pub[0].Type)

	adm := drain(admin)
	require.Len(t, adm, 2)
	assert.Equal(t, EventNewPost, adm[0].Type)
	assert.Equal(t, EventNewVisit, adm[1].Type)

	_ = hub.Shutdown(context.Background())
}

func TestHub_StartWiringForwardsBusEvents(t *testing.T) {
	hub := NewHub()
	client, err := hub.Register(nil, AudiencePublic)
	require.NoError(t, err)

	bus := NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.StartWiring(ctx, bus.Subscribe("hub", 8))

	require.NoError(t, bus.Publish(ctx, NewEvent(EventPostDeleted, 9, nil)))

	assert.Eventually(t, func() bool { return len(client.Send) == 1 }, testEventuallyTimeout, testPollInterval)
	events := drain(client)
	require.Len(t, events, 1)
	assert.Equal(t, uint(9), events[0].PostID)

	_ = hub.Shutdown(context.Background())
	assert.Eventually(t, func() bool { return bus.Subscribers() == 0 }, testEventuallyTimeout, testPollInterval)
}

func TestHub_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	client, err := hub.Register(nil, AudiencePublic)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+10; i++ {
		hub.Broadcast(NewEvent(EventNewPost, uint(i), nil))
	}
	assert.Len(t, client.Send, sendBuffer)

	_ = hub.Shutdown(context.Background())
}

func TestHub_UnregisterAndShutdown(t *testing.T) {
	hub := NewHub()
	a, err := hub.Register(nil, AudiencePublic)
	require.NoError(t, err)
	_, err = hub.Register(nil, AudienceAdmin)
	require.NoError(t, err)
	assert.Equal(t, 2, hub.Count())

	hub.UnregisterClient(a)
	hub.UnregisterClient(a)
	assert.Equal(t, 1, hub.Count())
	_, ok := <-a.Send
	assert.False(t, ok)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.Count())

	_, err = hub.Register(nil, AudiencePublic)
	assert.ErrorIs(t, err, ErrHubClosed)
}
