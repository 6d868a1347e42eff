// Package chat runs the rooms and message log of matched users.
package chat

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"pawpair/backend/internal/models"
	"pawpair/backend/internal/storage"
	"pawpair/backend/pkg/apperrors"
)

const (
	DefaultMaxMessageLength = 1000
	lockStripes             = 64
)

// Store is the persistence the chat service needs.
type Store interface {
	storage.RoomStore
	storage.MessageStore
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
}

// Broker delivers committed events to live subscribers. Publish must not block.
type Broker interface {
	Publish(ev models.Event)
}

// Translator renders localized notices.
type Translator interface {
	GetString(lang, key string) string
}

type Options struct {
	MaxMessageLength int
	DefaultLang      string
}

type Service struct {
	Storage    Store
	Directory  storage.Directory
	Broker     Broker
	Translator Translator

	maxLen      int
	defaultLang string
	locks       [lockStripes]sync.Mutex
	now         func() time.Time
}

// NewService applies the defaults of opts. broker and tr may be nil.
func NewService(s Store, dir storage.Directory, broker Broker, tr Translator, opts Options) *Service {
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = DefaultMaxMessageLength
	}
	if opts.DefaultLang == "" {
		opts.DefaultLang = "en"
	}
	return &Service{
		Storage:     s,
		Directory:   dir,
		Broker:      broker,
		Translator:  tr,
		maxLen:      opts.MaxMessageLength,
		defaultLang: opts.DefaultLang,
		now:         time.Now,
	}
}

// roomLock returns the mutex serialising appends to roomID.
func (s *Service) roomLock(roomID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(roomID))
	return &s.locks[h.Sum32()%lockStripes]
}

// authorize loads the room and fails closed unless userID takes part in its match.
func (s *Service) authorize(ctx context.Context, roomID, userID string) (*models.ChatRoom, *models.Match, error) {
	if err := models.ValidateIDs(roomID); err != nil {
		return nil, nil, err
	}
	room, err := s.Storage.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, nil, err
	}
	m, err := s.Storage.GetMatch(ctx, room.MatchID)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeNotFound {
			return nil, nil, apperrors.ErrForbidden
		}
		return nil, nil, err
	}
	if !m.IsParticipant(userID) {
		return nil, nil, apperrors.ErrForbidden
	}
	return room, m, nil
}

// Authorize is the access guard used by the websocket endpoint before upgrading.
func (s *Service) Authorize(ctx context.Context, roomID, userID string) (*models.ChatRoom, error) {
	room, _, err := s.authorize(ctx, roomID, userID)
	return room, err
}
