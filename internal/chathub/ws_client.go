package chathub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"pawpair/backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
	frameTimeout   = 5 * time.Second
)

type ClientOptions struct {
	SendBuffer int
	// RateLimit is the sustained number of inbound frames per second.
	RateLimit float64
	RateBurst int
}

// WebSocketClient implements Client over a gorilla websocket connection.
type WebSocketClient struct {
	UserID  string
	RoomID  string
	Conn    *websocket.Conn
	Hub     *ManagerService
	Handler FrameHandler
	Send    chan models.Envelope

	// errs carries error envelopes for this connection only. Unlike Send it
	// is never closed, so the read pump can write to it at any time.
	errs      chan models.Envelope
	limiter   *rate.Limiter
	closeOnce sync.Once
}

// NewWebSocketClient wraps an upgraded connection for one user in one room.
func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, handler FrameHandler, userID, roomID string, opts ClientOptions) *WebSocketClient {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 1
	}
	return &WebSocketClient{
		UserID:  userID,
		RoomID:  roomID,
		Conn:    conn,
		Hub:     hub,
		Handler: handler,
		Send:    make(chan models.Envelope, opts.SendBuffer),
		errs:    make(chan models.Envelope, 8),
		limiter: rate.NewLimiter(limit, opts.RateBurst),
	}
}

func (c *WebSocketClient) GetUserID() string                      { return c.UserID }
func (c *WebSocketClient) GetRoomID() string                      { return c.RoomID }
func (c *WebSocketClient) GetSendChannel() chan<- models.Envelope { return c.Send }

// Run starts the pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes Send, which stops the write pump and with it the connection.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}
