package chathub

import (
	"context"

	"pawpair/backend/internal/models"
)

// Client is one live subscription to a room (a websocket connection).
type Client interface {
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string
	// GetRoomID returns the room the client is subscribed to.
	GetRoomID() string

	// GetSendChannel returns the channel the hub writes envelopes to.
	// The hub never blocks on it.
	GetSendChannel() chan<- models.Envelope

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the send channel down. The hub calls it exactly once,
	// when the client leaves its room set.
	Close()
}

// FrameHandler executes inbound frames on behalf of a connected user.
type FrameHandler interface {
	HandleFrame(ctx context.Context, roomID, userID string, frame models.InboundFrame) error
}
