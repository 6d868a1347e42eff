package chathub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"pawpair/backend/internal/models"
	"pawpair/backend/pkg/logger"
)

const publishTimeout = 2 * time.Second

// relay drains the outbound queue in order. Either Redis or the local
// dispatch loop receives the envelopes, never both.
func (m *ManagerService) relay(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-m.outboundCh:
			if m.local.Load() {
				select {
				case m.deliverCh <- env:
				case <-ctx.Done():
					return
				}
				continue
			}
			pctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			if err := m.PubSub.PublishEnvelope(pctx, env); err != nil {
				logger.Error("hub: redis publish failed",
					zap.String("room_id", env.RoomID),
					zap.Error(err))
			}
			cancel()
		}
	}
}

// listen feeds envelopes from every instance into the dispatch loop.
func (m *ManagerService) listen(ctx context.Context) {
	sub := m.PubSub.SubscribeToAllRooms(ctx)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		logger.Error("hub: redis subscribe failed, delivering locally", zap.Error(err))
		m.local.Store(true)
		m.markReady()
		return
	}
	m.markReady()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			env, err := decodeEnvelope(msg.Payload)
			if err != nil {
				logger.Warn("hub: bad envelope on redis", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			select {
			case m.deliverCh <- env:
			case <-ctx.Done():
				return
			}
		}
	}
}

// decodeEnvelope accepts only payloads that map back to a room event.
func decodeEnvelope(payload string) (models.Envelope, error) {
	var env models.Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return models.Envelope{}, err
	}
	ev, err := models.Decode(env)
	if err != nil {
		return models.Envelope{}, err
	}
	if ev.Room() == "" {
		return models.Envelope{}, errors.New("envelope without room")
	}
	return models.Encode(ev), nil
}
