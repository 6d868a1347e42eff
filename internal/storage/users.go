package storage

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"pawpair/backend/internal/models"
	"pawpair/backend/pkg/apperrors"
)

var ErrTelegramIDTaken = apperrors.Conflict("telegram id is already linked to another user")

// SaveUser inserts or updates a directory record.
func (s *Service) SaveUser(ctx context.Context, user *models.User) error {
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrTelegramIDTaken
		}
		return errors.Wrap(err, "storage.SaveUser")
	}
	return nil
}

// ResolveUser returns the user with the given id or apperrors.ErrUserNotFound.
func (s *Service) ResolveUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "storage.ResolveUser")
	}
	return &user, nil
}
