package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs joins the connection to room and blocks until it closes. initial,
// when set, is the first frame the client receives.
func ServeWs(hub *Hub, c *websocket.Conn, room string, userID uuid.UUID, initial []byte, handler MessageHandler) {
	client := &Client{
		Hub:     hub,
		Conn:    c,
		Room:    room,
		UserID:  userID,
		Send:    make(chan []byte, sendBuffer),
		handler: handler,
	}
	if initial != nil {
		client.Send <- initial
	}
	if !hub.join(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
