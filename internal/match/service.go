// Package match owns confirmed mutual matches: one per unordered user pair.
package match

import (
	"context"

	"go.uber.org/zap"

	"pawpair/backend/internal/models"
	"pawpair/backend/internal/storage"
	"pawpair/backend/pkg/apperrors"
	"pawpair/backend/pkg/logger"
)

// Registry creates matches and moves them through their status lifecycle.
type Registry struct {
	Storage storage.MatchStore
}

// NewRegistry creates a registry over the given match store.
func NewRegistry(s storage.MatchStore) *Registry {
	return &Registry{Storage: s}
}

// CreateOrGetMatch returns the match of the unordered pair, inserting an
// ACTIVE one if none exists. Concurrent calls for the same pair, from
// either direction, all return the single surviving row; created is true
// only for the call whose insert won.
func (r *Registry) CreateOrGetMatch(ctx context.Context, userA, userB string) (*models.Match, bool, error) {
	if err := models.ValidateIDs(userA, userB); err != nil {
		return nil, false, err
	}
	if userA == userB {
		return nil, false, apperrors.ErrInvalidTarget
	}

	existing, err := r.Storage.FindMatchByPair(ctx, userA, userB)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	m := &models.Match{UserAID: userA, UserBID: userB, Status: models.MatchActive}
	created, err := r.Storage.CreateMatchIfAbsent(ctx, m)
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.Info("match created",
			zap.String("match_id", m.ID),
			zap.String("user_a", m.UserAID),
			zap.String("user_b", m.UserBID))
		return m, true, nil
	}

	// Lost the race to a concurrent trigger; hand back the winner's row.
	existing, err = r.Storage.FindMatchByPair(ctx, userA, userB)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, apperrors.Internal("match insert was absorbed but no row exists for the pair")
	}
	return existing, false, nil
}

// Get returns the match or apperrors.ErrMatchNotFound.
func (r *Registry) Get(ctx context.Context, matchID string) (*models.Match, error) {
	if err := models.ValidateIDs(matchID); err != nil {
		return nil, err
	}
	return r.Storage.GetMatch(ctx, matchID)
}

// GetFor returns the match only to one of its participants.
func (r *Registry) GetFor(ctx context.Context, matchID, userID string) (*models.Match, error) {
	m, err := r.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.IsParticipant(userID) {
		return nil, apperrors.ErrForbidden
	}
	return m, nil
}

// UpdateStatus applies a status transition. ACTIVE -> ENDED is the only
// change allowed; repeating the current status is a no-op.
func (r *Registry) UpdateStatus(ctx context.Context, matchID string, status models.MatchStatus) (*models.Match, error) {
	if !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}
	m, err := r.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return r.transition(ctx, m, status)
}

// UpdateStatusFor is UpdateStatus behind the participant check.
func (r *Registry) UpdateStatusFor(ctx context.Context, matchID, userID string, status models.MatchStatus) (*models.Match, error) {
	if !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}
	m, err := r.GetFor(ctx, matchID, userID)
	if err != nil {
		return nil, err
	}
	return r.transition(ctx, m, status)
}

func (r *Registry) transition(ctx context.Context, m *models.Match, to models.MatchStatus) (*models.Match, error) {
	if m.Status == to {
		return m, nil
	}
	if !(m.Status == models.MatchActive && to == models.MatchEnded) {
		return nil, apperrors.ErrInvalidTransition
	}

	ok, err := r.Storage.UpdateMatchStatus(ctx, m.ID, m.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Someone else moved it first; report the state we ended up in.
		current, err := r.Storage.GetMatch(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		if current.Status != to {
			return nil, apperrors.ErrInvalidTransition
		}
		return current, nil
	}

	logger.Info("match status updated", zap.String("match_id", m.ID), zap.String("status", string(to)))
	m.Status = to
	return m, nil
}

// ListForUser returns the user's matches, optionally only those in status.
func (r *Registry) ListForUser(ctx context.Context, userID string, status *models.MatchStatus) ([]models.Match, error) {
	if err := models.ValidateIDs(userID); err != nil {
		return nil, err
	}
	if status != nil && !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}
	return r.Storage.ListMatchesForUser(ctx, userID, status)
}
