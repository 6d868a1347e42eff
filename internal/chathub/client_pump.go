package chathub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pawpair/backend/internal/models"
	"pawpair/backend/pkg/apperrors"
	"pawpair/backend/pkg/logger"
)

// readPump turns inbound frames into handler calls until the connection drops.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("ws: read failed", zap.String("user_id", c.UserID), zap.Error(err))
			}
			return
		}

		if !c.limiter.Allow() {
			c.sendError("rate limit exceeded")
			continue
		}

		var frame models.InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.sendError("malformed frame")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
		err = c.Handler.HandleFrame(ctx, c.RoomID, c.UserID, frame)
		cancel()
		if err != nil {
			c.sendError(clientMessage(err))
		}
	}
}

// writePump writes queued envelopes and keeps the connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(env); err != nil {
				return
			}

		case env := <-c.errs:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WebSocketClient) sendError(msg string) {
	env := models.Envelope{
		Type:      models.EventError,
		RoomID:    c.RoomID,
		Content:   msg,
		Timestamp: time.Now(),
	}
	select {
	case c.errs <- env:
	default:
		logger.Debug("ws: error queue full", zap.String("user_id", c.UserID))
	}
}

// clientMessage hides internal failures from the peer.
func clientMessage(err error) string {
	if apperrors.CodeOf(err) == apperrors.CodeInternal {
		logger.Error("ws: frame failed", zap.Error(err))
		return "internal server error"
	}
	return err.Error()
}
