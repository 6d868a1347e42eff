package storage

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pawpair/backend/internal/models"
	"pawpair/backend/pkg/apperrors"
)

// CreateMatchIfAbsent inserts the match unless its normalized pair is taken.
// The caller re-reads the pair when false is returned.
func (s *Service) CreateMatchIfAbsent(ctx context.Context, match *models.Match) (bool, error) {
	match.UserAID, match.UserBID = models.NormalizePair(match.UserAID, match.UserBID)
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(match)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, nil
		}
		return false, errors.Wrap(res.Error, "storage.CreateMatchIfAbsent")
	}
	return res.RowsAffected > 0, nil
}

// FindMatchByPair looks the pair up in either order; nil, nil when absent.
func (s *Service) FindMatchByPair(ctx context.Context, userA, userB string) (*models.Match, error) {
	a, b := models.NormalizePair(userA, userB)
	var match models.Match
	err := s.DB.WithContext(ctx).Where("user_a_id = ? AND user_b_id = ?", a, b).First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "storage.FindMatchByPair")
	}
	return &match, nil
}

// GetMatch returns apperrors.ErrMatchNotFound when the match does not exist.
func (s *Service) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	var match models.Match
	err := s.DB.WithContext(ctx).Where("id = ?", matchID).First(&match).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrMatchNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "storage.GetMatch")
	}
	return &match, nil
}

// UpdateMatchStatus moves the match from one status to another and
// reports false if the row was no longer in the expected status.
func (s *Service) UpdateMatchStatus(ctx context.Context, matchID string, from, to models.MatchStatus) (bool, error) {
	res := s.DB.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ? AND status = ?", matchID, from).
		Update("status", to)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "storage.UpdateMatchStatus")
	}
	return res.RowsAffected > 0, nil
}

// ListMatchesForUser returns the user's matches newest first, optionally filtered by status.
func (s *Service) ListMatchesForUser(ctx context.Context, userID string, status *models.MatchStatus) ([]models.Match, error) {
	q := s.DB.WithContext(ctx).Where("(user_a_id = ? OR user_b_id = ?)", userID, userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var res []models.Match
	err := q.Order("created_at desc, id").Find(&res).Error
	return res, errors.Wrap(err, "storage.ListMatchesForUser")
}
