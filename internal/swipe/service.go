// Package swipe records directional interest between users and detects
// reciprocity.
package swipe

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pawpair/backend/internal/models"
	"pawpair/backend/internal/storage"
	"pawpair/backend/pkg/apperrors"
	"pawpair/backend/pkg/logger"
)

// MatchCreator is the part of the match registry the ledger needs.
type MatchCreator interface {
	CreateOrGetMatch(ctx context.Context, userA, userB string) (*models.Match, bool, error)
}

// MatchNotifier is told about matches created by a swipe.
type MatchNotifier interface {
	MatchCreated(ctx context.Context, m *models.Match)
}

// Service is the interest ledger.
type Service struct {
	Storage   storage.InterestStore
	Directory storage.Directory
	Matches   MatchCreator
	Notifier  MatchNotifier

	now func() time.Time
}

// NewService wires the ledger. notifier may be nil.
func NewService(s storage.InterestStore, dir storage.Directory, matches MatchCreator, notifier MatchNotifier) *Service {
	return &Service{
		Storage:   s,
		Directory: dir,
		Matches:   matches,
		Notifier:  notifier,
		now:       time.Now,
	}
}

// RecordInterest stores a swipe from -> to. A second swipe for the same
// ordered pair fails with apperrors.ErrAlreadyExpressed. When the target
// has already swiped back, the pair's match is returned; otherwise nil.
func (s *Service) RecordInterest(ctx context.Context, from, to string) (*models.Match, error) {
	if err := s.validatePair(ctx, from, to); err != nil {
		return nil, err
	}

	now := s.now()
	created, err := s.Storage.CreateInterest(ctx, &models.Interest{
		FromUserID: from,
		ToUserID:   to,
		SwipedAt:   now,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, apperrors.ErrAlreadyExpressed
	}

	reciprocal, err := s.Storage.InterestExists(ctx, to, from)
	if err != nil {
		return nil, err
	}
	if !reciprocal {
		logger.Debug("interest recorded", zap.String("from", from), zap.String("to", to))
		return nil, nil
	}

	m, matchCreated, err := s.Matches.CreateOrGetMatch(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if matchCreated && s.Notifier != nil {
		go s.Notifier.MatchCreated(context.Background(), m)
	}
	return m, nil
}

// ToggleLike flips the like flag of from -> to, creating the record
// liked when it does not exist yet. It never creates a match.
func (s *Service) ToggleLike(ctx context.Context, from, to string) (bool, error) {
	if err := s.validatePair(ctx, from, to); err != nil {
		return false, err
	}

	now := s.now()
	created, err := s.Storage.CreateInterest(ctx, &models.Interest{
		FromUserID: from,
		ToUserID:   to,
		Liked:      true,
		LikedAt:    &now,
		SwipedAt:   now,
	})
	if err != nil {
		return false, err
	}
	if created {
		return true, nil
	}

	rec, err := s.Storage.ToggleInterestLike(ctx, from, to, now)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, apperrors.Internal("interest vanished while toggling like")
	}
	return rec.Liked, nil
}

// HasInterest reports whether from has swiped on to.
func (s *Service) HasInterest(ctx context.Context, from, to string) (bool, error) {
	if err := models.ValidateIDs(from, to); err != nil {
		return false, err
	}
	return s.Storage.InterestExists(ctx, from, to)
}

// IsLiked reports whether from currently likes to. A missing record reads as false.
func (s *Service) IsLiked(ctx context.Context, from, to string) (bool, error) {
	if err := models.ValidateIDs(from, to); err != nil {
		return false, err
	}
	rec, err := s.Storage.GetInterest(ctx, from, to)
	if err != nil {
		return false, err
	}
	return rec != nil && rec.Liked, nil
}

// SentInterests lists the records userID created, newest first.
func (s *Service) SentInterests(ctx context.Context, userID string) ([]models.Interest, error) {
	if err := models.ValidateIDs(userID); err != nil {
		return nil, err
	}
	return s.Storage.ListInterestsFrom(ctx, userID)
}

// ReceivedInterests lists the records targeting userID, newest first.
func (s *Service) ReceivedInterests(ctx context.Context, userID string) ([]models.Interest, error) {
	if err := models.ValidateIDs(userID); err != nil {
		return nil, err
	}
	return s.Storage.ListInterestsTo(ctx, userID)
}

func (s *Service) validatePair(ctx context.Context, from, to string) error {
	if err := models.ValidateIDs(from, to); err != nil {
		return err
	}
	if from == to {
		return apperrors.ErrInvalidTarget
	}
	for _, id := range []string{from, to} {
		if _, err := s.Directory.ResolveUser(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
