package storage

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"pawpair/backend/internal/models"
)

// SaveMessage appends the message; msg.ID is filled in by the database.
func (s *Service) SaveMessage(ctx context.Context, msg *models.ChatMessage) error {
	if err := s.DB.WithContext(ctx).Create(msg).Error; err != nil {
		return errors.Wrapf(err, "storage.SaveMessage room=%s", msg.RoomID)
	}
	return nil
}

// GetChatHistory returns the whole room log in accepted order.
func (s *Service) GetChatHistory(ctx context.Context, roomID string) ([]models.ChatMessage, error) {
	history := make([]models.ChatMessage, 0)
	err := s.DB.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("sent_at asc, id asc").
		Find(&history).Error
	if err != nil {
		return nil, errors.Wrap(err, "storage.GetChatHistory")
	}
	return history, nil
}

// GetLastMessage returns nil, nil for an empty room.
func (s *Service) GetLastMessage(ctx context.Context, roomID string) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	err := s.DB.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("sent_at desc, id desc").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "storage.GetLastMessage")
	}
	return &msg, nil
}

// MaxMessageID is the read watermark of a room; 0 for an empty room.
func (s *Service) MaxMessageID(ctx context.Context, roomID string) (uint, error) {
	var maxID sql.NullInt64
	err := s.DB.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("room_id = ?", roomID).
		Select("MAX(id)").
		Row().
		Scan(&maxID)
	if err != nil {
		return 0, errors.Wrap(err, "storage.MaxMessageID")
	}
	if !maxID.Valid {
		return 0, nil
	}
	return uint(maxID.Int64), nil
}

// MarkRead flips is_read for unread messages from other senders up to and
// including upTo. Rows already read are never touched again.
func (s *Service) MarkRead(ctx context.Context, roomID, readerID string, upTo uint) (int64, error) {
	if upTo == 0 {
		return 0, nil
	}
	res := s.DB.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("room_id = ? AND sender_id <> ? AND is_read = ? AND id <= ?", roomID, readerID, false, upTo).
		Update("is_read", true)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "storage.MarkRead")
	}
	return res.RowsAffected, nil
}

// CountUnread counts unread messages in roomID sent by anyone but viewerID.
func (s *Service) CountUnread(ctx context.Context, roomID, viewerID string) (int64, error) {
	var cnt int64
	err := s.DB.WithContext(ctx).
		Model(&models.ChatMessage{}).
		Where("room_id = ? AND sender_id <> ? AND is_read = ?", roomID, viewerID, false).
		Count(&cnt).Error
	if err != nil {
		return 0, errors.Wrap(err, "storage.CountUnread")
	}
	return cnt, nil
}
