package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"pawpair/backend/internal/models"
	"pawpair/backend/pkg/apperrors"
	"pawpair/backend/pkg/logger"
)

// PostMessage appends a message to the room log and hands it to the broker
// once committed. Subscribers see messages of a room in log order.
func (s *Service) PostMessage(ctx context.Context, roomID, senderID, content string) (*models.ChatMessage, error) {
	room, _, err := s.authorize(ctx, roomID, senderID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(content) == "" || utf8.RuneCountInString(content) > s.maxLen {
		return nil, apperrors.ErrInvalidContent
	}
	senderName := s.displayName(ctx, senderID)

	mu := s.roomLock(room.ID)
	mu.Lock()
	defer mu.Unlock()

	msg := &models.ChatMessage{
		RoomID:     room.ID,
		SenderID:   senderID,
		Content:    content,
		SentAt:     s.now(),
		SenderName: senderName,
	}
	if err := s.Storage.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	if s.Broker != nil {
		s.Broker.Publish(models.MessageEvent{Message: *msg})
	}
	logger.Debug("message posted",
		zap.String("room_id", msg.RoomID),
		zap.String("sender_id", msg.SenderID),
		zap.Uint("message_id", msg.ID))
	return msg, nil
}

// GetHistory replays the whole room log, oldest first.
func (s *Service) GetHistory(ctx context.Context, roomID, requesterID string) ([]models.ChatMessage, error) {
	_, m, err := s.authorize(ctx, roomID, requesterID)
	if err != nil {
		return nil, err
	}
	history, err := s.Storage.GetChatHistory(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return history, nil
	}

	names := map[string]string{
		m.UserAID: s.displayName(ctx, m.UserAID),
		m.UserBID: s.displayName(ctx, m.UserBID),
	}
	for i := range history {
		name, ok := names[history[i].SenderID]
		if !ok {
			name = s.displayName(ctx, history[i].SenderID)
			names[history[i].SenderID] = name
		}
		history[i].SenderName = name
	}
	return history, nil
}

// MarkRead marks every message from the other participant that existed when
// the call began as read, and returns how many flipped.
func (s *Service) MarkRead(ctx context.Context, roomID, readerID string) (int64, error) {
	if _, _, err := s.authorize(ctx, roomID, readerID); err != nil {
		return 0, err
	}
	watermark, err := s.Storage.MaxMessageID(ctx, roomID)
	if err != nil {
		return 0, err
	}
	n, err := s.Storage.MarkRead(ctx, roomID, readerID, watermark)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Debug("messages marked read",
			zap.String("room_id", roomID),
			zap.String("reader_id", readerID),
			zap.Int64("count", n))
	}
	return n, nil
}

// UnreadCount counts the messages in roomID that viewerID has not read yet.
func (s *Service) UnreadCount(ctx context.Context, roomID, viewerID string) (int64, error) {
	if _, _, err := s.authorize(ctx, roomID, viewerID); err != nil {
		return 0, err
	}
	return s.Storage.CountUnread(ctx, roomID, viewerID)
}

// LastMessage returns nil, nil for an empty room.
func (s *Service) LastMessage(ctx context.Context, roomID, viewerID string) (*models.ChatMessage, error) {
	if _, _, err := s.authorize(ctx, roomID, viewerID); err != nil {
		return nil, err
	}
	msg, err := s.Storage.GetLastMessage(ctx, roomID)
	if err != nil || msg == nil {
		return nil, err
	}
	msg.SenderName = s.displayName(ctx, msg.SenderID)
	return msg, nil
}
