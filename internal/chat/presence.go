package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pawpair/backend/internal/models"
	"pawpair/backend/pkg/apperrors"
	"pawpair/backend/pkg/logger"
)

const (
	keyEnter = "chat.enter"
	keyLeave = "chat.leave"
)

// AnnounceEnter broadcasts a localized "entered" notice. Nothing is persisted.
func (s *Service) AnnounceEnter(ctx context.Context, roomID, userID string) error {
	room, _, err := s.authorize(ctx, roomID, userID)
	if err != nil {
		return err
	}
	s.publish(models.EnterEvent{
		RoomID:    room.ID,
		UserID:    userID,
		Notice:    s.notice(ctx, keyEnter, userID),
		Timestamp: s.now(),
	})
	return nil
}

// AnnounceLeave broadcasts a localized "left" notice. Nothing is persisted.
func (s *Service) AnnounceLeave(ctx context.Context, roomID, userID string) error {
	room, _, err := s.authorize(ctx, roomID, userID)
	if err != nil {
		return err
	}
	s.publish(models.LeaveEvent{
		RoomID:    room.ID,
		UserID:    userID,
		Notice:    s.notice(ctx, keyLeave, userID),
		Timestamp: s.now(),
	})
	return nil
}

// HandleFrame executes one inbound websocket frame for the user connected
// to roomID.
func (s *Service) HandleFrame(ctx context.Context, roomID, userID string, frame models.InboundFrame) error {
	if frame.RoomID != "" && frame.RoomID != roomID {
		return apperrors.InvalidArg("frame room_id does not match the connection")
	}
	if frame.SenderID != "" && frame.SenderID != userID {
		return apperrors.Forbidden("sender_id does not match the authenticated user")
	}

	switch frame.Type {
	case models.EventMessage:
		_, err := s.PostMessage(ctx, roomID, userID, frame.Content)
		return err
	case models.EventEnter:
		return s.AnnounceEnter(ctx, roomID, userID)
	case models.EventLeave:
		return s.AnnounceLeave(ctx, roomID, userID)
	}
	return apperrors.InvalidArg(fmt.Sprintf("unsupported frame type %q", frame.Type))
}

func (s *Service) publish(ev models.Event) {
	if s.Broker != nil {
		s.Broker.Publish(ev)
	}
}

func (s *Service) notice(ctx context.Context, key, userID string) string {
	format := "%s"
	if s.Translator != nil {
		format = s.Translator.GetString(s.defaultLang, key)
	}
	return fmt.Sprintf(format, s.displayName(ctx, userID))
}

// displayName falls back to the user id when the directory cannot resolve it.
func (s *Service) displayName(ctx context.Context, userID string) string {
	if s.Directory == nil {
		return userID
	}
	u, err := s.Directory.ResolveUser(ctx, userID)
	if err != nil {
		logger.Warn("chat: resolve user failed", zap.String("user_id", userID), zap.Error(err))
		return userID
	}
	return u.DisplayName
}
