package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pawpair/backend/internal/models"
)

// CreateInterest inserts the record unless (from, to) already exists.
// It reports false when the unique pair index absorbed the insert.
func (s *Service) CreateInterest(ctx context.Context, interest *models.Interest) (bool, error) {
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(interest)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, nil
		}
		return false, errors.Wrap(res.Error, "storage.CreateInterest")
	}
	return res.RowsAffected > 0, nil
}

// GetInterest returns nil, nil when no record exists for the ordered pair.
func (s *Service) GetInterest(ctx context.Context, fromUserID, toUserID string) (*models.Interest, error) {
	var interest models.Interest
	err := s.DB.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		First(&interest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "storage.GetInterest")
	}
	return &interest, nil
}

// InterestExists reports whether a record exists for the ordered pair.
func (s *Service) InterestExists(ctx context.Context, fromUserID, toUserID string) (bool, error) {
	var cnt int64
	if err := s.DB.WithContext(ctx).
		Model(&models.Interest{}).
		Where("from_user_id = ? AND to_user_id = ?", fromUserID, toUserID).
		Count(&cnt).Error; err != nil {
		return false, errors.Wrap(err, "storage.InterestExists")
	}
	return cnt > 0, nil
}

// maxToggleAttempts bounds the compare-and-swap retries of ToggleInterestLike.
const maxToggleAttempts = 5

// ToggleInterestLike flips the like flag of an existing record and returns
// the updated record, or nil, nil when there is none. The write only lands
// if the flag still holds the value that was read, so a concurrent toggle
// forces a retry instead of being overwritten.
func (s *Service) ToggleInterestLike(ctx context.Context, fromUserID, toUserID string, now time.Time) (*models.Interest, error) {
	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		rec, err := s.GetInterest(ctx, fromUserID, toUserID)
		if err != nil || rec == nil {
			return nil, err
		}

		liked := !rec.Liked
		var likedAt *time.Time
		if liked {
			t := now
			likedAt = &t
		}

		res := s.DB.WithContext(ctx).
			Model(&models.Interest{}).
			Where("id = ? AND liked = ?", rec.ID, rec.Liked).
			Updates(map[string]interface{}{
				"liked":    liked,
				"liked_at": likedAt,
			})
		if res.Error != nil {
			return nil, errors.Wrap(res.Error, "storage.ToggleInterestLike")
		}
		if res.RowsAffected > 0 {
			rec.Liked = liked
			rec.LikedAt = likedAt
			return rec, nil
		}
	}
	return nil, errors.Errorf("storage.ToggleInterestLike: %s -> %s still contended after %d attempts",
		fromUserID, toUserID, maxToggleAttempts)
}

// ListInterestsFrom returns the records sent by userID, newest first.
func (s *Service) ListInterestsFrom(ctx context.Context, userID string) ([]models.Interest, error) {
	var res []models.Interest
	err := s.DB.WithContext(ctx).Where("from_user_id = ?", userID).Order("swiped_at desc, id desc").Find(&res).Error
	return res, errors.Wrap(err, "storage.ListInterestsFrom")
}

// ListInterestsTo returns the records received by userID, newest first.
func (s *Service) ListInterestsTo(ctx context.Context, userID string) ([]models.Interest, error) {
	var res []models.Interest
	err := s.DB.WithContext(ctx).Where("to_user_id = ?", userID).Order("swiped_at desc, id desc").Find(&res).Error
	return res, errors.Wrap(err, "storage.ListInterestsTo")
}
