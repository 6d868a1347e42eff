package chat

import (
	"context"

	"go.uber.org/zap"

	"pawpair/backend/internal/models"
	"pawpair/backend/pkg/apperrors"
	"pawpair/backend/pkg/logger"
)

// GetOrCreateRoom returns the room of the match, creating it on first use.
// Concurrent callers for the same match all get the same room.
func (s *Service) GetOrCreateRoom(ctx context.Context, matchID string) (*models.ChatRoom, error) {
	if err := models.ValidateIDs(matchID); err != nil {
		return nil, err
	}
	if _, err := s.Storage.GetMatch(ctx, matchID); err != nil {
		return nil, err
	}
	return s.getOrCreateRoom(ctx, matchID)
}

// GetOrCreateRoomFor is GetOrCreateRoom for one of the match participants.
func (s *Service) GetOrCreateRoomFor(ctx context.Context, matchID, userID string) (*models.ChatRoom, error) {
	if err := s.checkMatchAccess(ctx, matchID, userID); err != nil {
		return nil, err
	}
	return s.getOrCreateRoom(ctx, matchID)
}

func (s *Service) getOrCreateRoom(ctx context.Context, matchID string) (*models.ChatRoom, error) {
	room, err := s.Storage.FindRoomByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if room != nil {
		return room, nil
	}

	room = &models.ChatRoom{MatchID: matchID}
	created, err := s.Storage.CreateRoomIfAbsent(ctx, room)
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info("chat room created", zap.String("room_id", room.ID), zap.String("match_id", matchID))
		return room, nil
	}

	room, err = s.Storage.FindRoomByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, apperrors.Internal("room insert was absorbed but no room exists for the match")
	}
	return room, nil
}

// FindByMatch returns nil, nil when the match has no room yet.
func (s *Service) FindByMatch(ctx context.Context, matchID string) (*models.ChatRoom, error) {
	if err := models.ValidateIDs(matchID); err != nil {
		return nil, err
	}
	return s.Storage.FindRoomByMatch(ctx, matchID)
}

// FindByMatchFor is FindByMatch for one of the match participants.
func (s *Service) FindByMatchFor(ctx context.Context, matchID, userID string) (*models.ChatRoom, error) {
	if err := s.checkMatchAccess(ctx, matchID, userID); err != nil {
		return nil, err
	}
	return s.Storage.FindRoomByMatch(ctx, matchID)
}

// ListRoomsForUser returns the rooms of every match userID takes part in.
func (s *Service) ListRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	if err := models.ValidateIDs(userID); err != nil {
		return nil, err
	}
	return s.Storage.ListRoomsForUser(ctx, userID)
}

func (s *Service) checkMatchAccess(ctx context.Context, matchID, userID string) error {
	if err := models.ValidateIDs(matchID); err != nil {
		return err
	}
	m, err := s.Storage.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if !m.IsParticipant(userID) {
		return apperrors.ErrForbidden
	}
	return nil
}
