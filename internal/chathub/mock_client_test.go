package chathub_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"pawpair/backend/internal/models"
)

// MockClient is a test double for chathub.Client backed by a buffered channel.
type MockClient struct {
	mock.Mock
	userID string
	roomID string
	send   chan models.Envelope

	closeOnce sync.Once
	closed    chan struct{}
}

func newMockClient(userID, roomID string, buffer int) *MockClient {
	return &MockClient{
		userID: userID,
		roomID: roomID,
		send:   make(chan models.Envelope, buffer),
		closed: make(chan struct{}),
	}
}

func (c *MockClient) GetUserID() string                      { return c.userID }
func (c *MockClient) GetRoomID() string                      { return c.roomID }
func (c *MockClient) GetSendChannel() chan<- models.Envelope { return c.send }

func (c *MockClient) Run() {}

func (c *MockClient) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		close(c.send)
	})
}

func (c *MockClient) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Drain returns everything buffered so far.
func (c *MockClient) Drain() []models.Envelope {
	var out []models.Envelope
	for {
		select {
		case env, ok := <-c.send:
			if !ok {
				return out
			}
			out = append(out, env)
		default:
			return out
		}
	}
}

// MockFrameHandler records inbound frames.
type MockFrameHandler struct {
	mock.Mock
}

func (h *MockFrameHandler) HandleFrame(_ context.Context, roomID, userID string, frame models.InboundFrame) error {
	args := h.Called(roomID, userID, frame)
	return args.Error(0)
}
