package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"lms-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "cluster_events"

// Hub fans editor updates out to every websocket watching the same room.
// With Redis configured, updates also reach watchers connected to other instances.
type Hub struct {
	// room id -> clients
	rooms map[string][]*Client

	register   chan *Client
	unregister chan *Client
	// closed when Run returns
	done chan struct{}

	mu sync.RWMutex

	rdb *redis.Client
	// instance tags own Redis messages so local clients are not served twice.
	instance string

	logger logger.ILogger
}

type clusterMessage struct {
	Room     string          `json:"room"`
	Instance string          `json:"instance"`
	Message  json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rooms:      make(map[string][]*Client),
		rdb:        rdb,
		instance:   uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			h.rooms[client.Room] = append(h.rooms[client.Room], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"room":    client.Room,
				"user_id": client.UserID.String(),
			})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

// join registers client. It reports false once the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string][]*Client)
	h.mu.Unlock()
	for _, clients := range rooms {
		for _, c := range clients {
			c.closeSend()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[client.Room]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.rooms[client.Room] = append(clients[:i], clients[i+1:]...)
			client.closeSend()
			break
		}
	}
	if len(h.rooms[client.Room]) == 0 {
		delete(h.rooms, client.Room)
		h.logger.Info("Hub", "Room emptied", map[string]interface{}{"room": client.Room})
	}
}

// Publish delivers data to local watchers of room and to the cluster.
func (h *Hub) Publish(room string, data []byte) {
	h.deliver(room, data)

	if h.rdb != nil {
		payload, err := json.Marshal(clusterMessage{Room: room, Instance: h.instance, Message: data})
		if err != nil {
			return
		}
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Cluster publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// CloseRoom disconnects every local watcher of room.
func (h *Hub) CloseRoom(room string) {
	h.mu.Lock()
	clients := h.rooms[room]
	delete(h.rooms, room)
	h.mu.Unlock()
	for _, c := range clients {
		c.closeSend()
	}
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) deliver(room string, data []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.rooms[room]...)
	h.mu.RUnlock()

	for _, client := range clients {
		if !client.enqueue(data) {
			h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{"room": room})
			go h.leave(client)
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var payload clusterMessage
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			h.logger.Warn("Hub", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if payload.Instance == h.instance {
			continue
		}
		h.deliver(payload.Room, payload.Message)
	}
}
