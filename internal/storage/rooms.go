package storage

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pawpair/backend/internal/models"
	"pawpair/backend/pkg/apperrors"
)

// CreateRoomIfAbsent inserts the room unless its match already has one.
func (s *Service) CreateRoomIfAbsent(ctx context.Context, room *models.ChatRoom) (bool, error) {
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(room)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, nil
		}
		return false, errors.Wrap(res.Error, "storage.CreateRoomIfAbsent")
	}
	return res.RowsAffected > 0, nil
}

// FindRoomByMatch returns nil, nil if the match has no room yet.
func (s *Service) FindRoomByMatch(ctx context.Context, matchID string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.WithContext(ctx).Where("match_id = ?", matchID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "storage.FindRoomByMatch")
	}
	return &room, nil
}

// GetRoomByID returns apperrors.ErrRoomNotFound when the room does not exist.
func (s *Service) GetRoomByID(ctx context.Context, roomID string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.WithContext(ctx).Where("id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrRoomNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "storage.GetRoomByID")
	}
	return &room, nil
}

// ListRoomsForUser joins rooms through the matches the user takes part in.
func (s *Service) ListRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	var res []models.ChatRoom
	err := s.DB.WithContext(ctx).
		Joins("JOIN matches ON matches.id = chat_rooms.match_id").
		Where("matches.user_a_id = ? OR matches.user_b_id = ?", userID, userID).
		Order("chat_rooms.created_at desc").
		Find(&res).Error
	return res, errors.Wrap(err, "storage.ListRoomsForUser")
}
