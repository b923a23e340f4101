package handler

import (
	"context"
	"encoding/json"

	"lms-be/internal/dto"
	"lms-be/internal/pkg/logger"
	"lms-be/internal/pkg/serverutils"
	"lms-be/internal/service"
	internalWS "lms-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EditorHandler streams a live editor session over a websocket. Every
// change is pushed as {type:"change"}; inbound frames drive the editor.
type EditorHandler struct {
	service service.IEditorService
	hub     *internalWS.Hub
	auth    fiber.Handler
	logger  logger.ILogger
}

func NewEditorHandler(service service.IEditorService, hub *internalWS.Hub, auth fiber.Handler, log logger.ILogger) *EditorHandler {
	return &EditorHandler{
		service: service,
		hub:     hub,
		auth:    auth,
		logger:  log,
	}
}

func (h *EditorHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/editor/v1/ws/:id", h.auth, serverutils.RequireAdmin, h.ServeWs)
}

func (h *EditorHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	userID, err := serverutils.CurrentUserID(c)
	if err != nil {
		return err
	}
	sessionID := c.Params("id")

	// Reject unknown sessions before the upgrade so the client gets a 404.
	current, err := h.service.Get(c.UserContext(), sessionID)
	if err != nil {
		return err
	}
	initial, _ := json.Marshal(dto.EditorMessage{
		Type:    service.EditorMessageChange,
		Value:   current.Value,
		Version: current.Version,
	})

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("EditorHandler", "WebSocket session started", map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID.String(),
		})
		internalWS.ServeWs(h.hub, conn, sessionID, userID, initial, h.dispatch(sessionID))
		h.logger.Info("EditorHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
	})(c)
}

func (h *EditorHandler) dispatch(sessionID string) internalWS.MessageHandler {
	return func(data []byte) []byte {
		var msg dto.EditorMessage
		var reply *dto.EditorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			reply = &dto.EditorMessage{Type: service.EditorMessageError, Error: "malformed message"}
		} else {
			reply = h.service.HandleMessage(context.Background(), sessionID, &msg)
		}
		if reply == nil {
			return nil
		}
		out, _ := json.Marshal(reply)
		return out
	}
}
