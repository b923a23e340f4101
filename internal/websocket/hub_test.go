package websocket

import (
	"context"
	"testing"
	"time"

	"lms-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(nil, logger.FromZap(zap.NewNop()))
	go hub.Run(ctx)
	return hub
}

func joinRoom(t *testing.T, hub *Hub, room string, buffer int) *Client {
	t.Helper()
	c := &Client{Hub: hub, Room: room, UserID: uuid.New(), Send: make(chan []byte, buffer)}
	before := hub.RoomSize(room)
	require.True(t, hub.join(c))
	require.Eventually(t, func() bool { return hub.RoomSize(room) == before+1 }, time.Second, 5*time.Millisecond)
	return c
}

func TestHubPublishReachesOnlyRoom(t *testing.T) {
	hub := newTestHub(t)
	a := joinRoom(t, hub, "doc-a", 4)
	b := joinRoom(t, hub, "doc-b", 4)

	hub.Publish("doc-a", []byte(`{"type":"change"}`))

	select {
	case msg := <-a.Send:
		assert.JSONEq(t, `{"type":"change"}`, string(msg))
	case <-time.After(time.Second):
		t.Fatal("room member did not receive message")
	}
	assert.Len(t, b.Send, 0)
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := newTestHub(t)
	c := joinRoom(t, hub, "doc", 1)

	hub.Publish("doc", []byte("1"))
	hub.Publish("doc", []byte("2"))

	assert.Eventually(t, func() bool { return hub.RoomSize("doc") == 0 }, time.Second, 5*time.Millisecond)
	<-c.Send
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHubCloseRoom(t *testing.T) {
	hub := newTestHub(t)
	c := joinRoom(t, hub, "doc", 1)

	hub.CloseRoom("doc")

	assert.Equal(t, 0, hub.RoomSize("doc"))
	_, open := <-c.Send
	assert.False(t, open)
	hub.Publish("doc", []byte("late"))
}

func TestHubStopReleasesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, logger.FromZap(zap.NewNop()))
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	c := joinRoom(t, hub, "doc", 1)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	_, open := <-c.Send
	assert.False(t, open)

	left := make(chan struct{})
	go func() {
		hub.leave(c)
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after the hub stopped")
	}
	assert.False(t, hub.join(&Client{Hub: hub, Room: "doc", Send: make(chan []byte, 1)}))
}
