package storage

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"pawpair/backend/internal/models"
)

const roomChannelPrefix = "chat:room:"

// RoomChannel is the Redis channel carrying the events of one room.
func RoomChannel(roomID string) string {
	return roomChannelPrefix + roomID
}

// PublishEnvelope publishes a room event to Redis Pub/Sub.
func (s *Service) PublishEnvelope(ctx context.Context, env models.Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, "storage.PublishEnvelope.Marshal")
	}
	if err := s.Redis.Publish(ctx, RoomChannel(env.RoomID), payload).Err(); err != nil {
		return errors.Wrap(err, "storage.PublishEnvelope")
	}
	return nil
}

// SubscribeToAllRooms subscribes to every room channel by pattern.
func (s *Service) SubscribeToAllRooms(ctx context.Context) *redis.PubSub {
	return s.Redis.PSubscribe(ctx, roomChannelPrefix+"*")
}
