package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pawpair/backend/internal/chathub"
	"pawpair/backend/pkg/logger"
	"pawpair/backend/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers connect from the app origin; tokens gate access.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket GET /ws/rooms/:room_id subscribes the caller to a room
// after the access check.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	caller, err := currentUser(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	room, err := h.Chat.Authorize(c.Request.Context(), c.Param("room_id"), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logger.Warn("ws: upgrade failed", zap.String("user_id", caller), zap.Error(err))
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, conn, h.Chat, caller, room.ID, h.Client)
	if !h.Hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	client.Run()
}
