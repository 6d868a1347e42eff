package chathub

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"pawpair/backend/internal/models"
	"pawpair/backend/internal/storage"
	"pawpair/backend/pkg/logger"
)

const DefaultQueueSize = 1024

// ManagerService fans room events out to the clients subscribed to them.
// With a PubSub configured, events travel through Redis so every instance
// delivers them; otherwise they are delivered in process.
type ManagerService struct {
	RegisterCh   chan Client
	UnregisterCh chan Client

	PubSub storage.PubSub

	mu    sync.RWMutex
	rooms map[string]map[Client]struct{}

	outboundCh chan models.Envelope
	deliverCh  chan models.Envelope

	// local is set when the relay bypasses Redis.
	local     atomic.Bool
	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
}

// NewManagerService builds a hub. ps may be nil for a single instance.
func NewManagerService(ps storage.PubSub, queueSize int) *ManagerService {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	m := &ManagerService{
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		PubSub:       ps,
		rooms:        make(map[string]map[Client]struct{}),
		outboundCh:   make(chan models.Envelope, queueSize),
		deliverCh:    make(chan models.Envelope, queueSize),
		ready:        make(chan struct{}),
		done:         make(chan struct{}),
	}
	m.local.Store(ps == nil)
	return m
}

// Publish queues ev for delivery without blocking. When the queue is full
// the event is dropped; clients catch up through history.
func (m *ManagerService) Publish(ev models.Event) {
	env := models.Encode(ev)
	select {
	case m.outboundCh <- env:
	default:
		logger.Warn("hub: outbound queue full, dropping event",
			zap.String("room_id", env.RoomID),
			zap.String("type", string(env.Type)))
	}
}

// Ready is closed once the hub can deliver published events.
func (m *ManagerService) Ready() <-chan struct{} {
	return m.ready
}

// Subscribers returns the number of local clients in roomID.
func (m *ManagerService) Subscribers(roomID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[roomID])
}

// Register adds c to its room unless the hub has stopped.
func (m *ManagerService) Register(c Client) bool {
	select {
	case m.RegisterCh <- c:
		return true
	case <-m.done:
		return false
	}
}

// Unregister removes c from its room unless the hub has stopped.
func (m *ManagerService) Unregister(c Client) {
	select {
	case m.UnregisterCh <- c:
	case <-m.done:
	}
}

// Run is the dispatch loop. It returns when ctx is cancelled, closing
// every remaining client.
func (m *ManagerService) Run(ctx context.Context) {
	defer close(m.done)

	if m.local.Load() {
		m.markReady()
	} else {
		go m.listen(ctx)
	}
	go m.relay(ctx)

	logger.Info("chat hub started", zap.Bool("redis", !m.local.Load()))
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			logger.Info("chat hub stopped")
			return
		case c := <-m.RegisterCh:
			m.add(c)
		case c := <-m.UnregisterCh:
			m.remove(c)
		case env := <-m.deliverCh:
			m.deliver(env)
		}
	}
}

func (m *ManagerService) markReady() {
	m.readyOnce.Do(func() { close(m.ready) })
}

func (m *ManagerService) add(c Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.rooms[c.GetRoomID()]
	if !ok {
		set = make(map[Client]struct{})
		m.rooms[c.GetRoomID()] = set
	}
	set[c] = struct{}{}
	logger.Debug("client joined room", zap.String("room_id", c.GetRoomID()), zap.String("user_id", c.GetUserID()))
}

// remove closes c if it was still subscribed.
func (m *ManagerService) remove(c Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(c)
}

func (m *ManagerService) removeLocked(c Client) {
	set, ok := m.rooms[c.GetRoomID()]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(m.rooms, c.GetRoomID())
	}
	c.Close()
	logger.Debug("client left room", zap.String("room_id", c.GetRoomID()), zap.String("user_id", c.GetUserID()))
}

// deliver writes env to every subscriber of its room. A client that cannot
// keep up is dropped.
func (m *ManagerService) deliver(env models.Envelope) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for c := range m.rooms[env.RoomID] {
		select {
		case c.GetSendChannel() <- env:
		default:
			logger.Warn("hub: client too slow, dropping connection",
				zap.String("room_id", env.RoomID),
				zap.String("user_id", c.GetUserID()))
			m.removeLocked(c)
		}
	}
}

func (m *ManagerService) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, set := range m.rooms {
		for c := range set {
			m.removeLocked(c)
		}
	}
}
