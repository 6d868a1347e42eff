package storage

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pawpair/backend/internal/models"
)

// Directory resolves user ids to profile records.
type Directory interface {
	ResolveUser(ctx context.Context, id string) (*models.User, error)
}

type InterestStore interface {
	CreateInterest(ctx context.Context, interest *models.Interest) (bool, error)
	GetInterest(ctx context.Context, fromUserID, toUserID string) (*models.Interest, error)
	InterestExists(ctx context.Context, fromUserID, toUserID string) (bool, error)
	ToggleInterestLike(ctx context.Context, fromUserID, toUserID string, now time.Time) (*models.Interest, error)
	ListInterestsFrom(ctx context.Context, userID string) ([]models.Interest, error)
	ListInterestsTo(ctx context.Context, userID string) ([]models.Interest, error)
}

type MatchStore interface {
	CreateMatchIfAbsent(ctx context.Context, match *models.Match) (bool, error)
	FindMatchByPair(ctx context.Context, userA, userB string) (*models.Match, error)
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
	UpdateMatchStatus(ctx context.Context, matchID string, from, to models.MatchStatus) (bool, error)
	ListMatchesForUser(ctx context.Context, userID string, status *models.MatchStatus) ([]models.Match, error)
}

type RoomStore interface {
	CreateRoomIfAbsent(ctx context.Context, room *models.ChatRoom) (bool, error)
	FindRoomByMatch(ctx context.Context, matchID string) (*models.ChatRoom, error)
	GetRoomByID(ctx context.Context, roomID string) (*models.ChatRoom, error)
	ListRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error)
}

type MessageStore interface {
	SaveMessage(ctx context.Context, msg *models.ChatMessage) error
	GetChatHistory(ctx context.Context, roomID string) ([]models.ChatMessage, error)
	GetLastMessage(ctx context.Context, roomID string) (*models.ChatMessage, error)
	MaxMessageID(ctx context.Context, roomID string) (uint, error)
	MarkRead(ctx context.Context, roomID, readerID string, upTo uint) (int64, error)
	CountUnread(ctx context.Context, roomID, viewerID string) (int64, error)
}

// PubSub relays real-time envelopes between service instances.
type PubSub interface {
	PublishEnvelope(ctx context.Context, env models.Envelope) error
	SubscribeToAllRooms(ctx context.Context) *redis.PubSub
}

type Storage interface {
	Directory
	InterestStore
	MatchStore
	RoomStore
	MessageStore

	SaveUser(ctx context.Context, user *models.User) error
}

var _ Storage = (*Service)(nil)

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// OpenPostgres opens the primary store through lib/pq.
func OpenPostgres(dsn string, maxOpenConns int) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        dsn,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "storage.OpenPostgres")
	}
	if maxOpenConns > 0 {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "storage.OpenPostgres.DB")
		}
		sqlDB.SetMaxOpenConns(maxOpenConns)
	}
	return db, nil
}

// Migrate creates or updates the tables of the core.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Interest{},
		&models.Match{},
		&models.ChatRoom{},
		&models.ChatMessage{},
	)
}

// isUniqueViolation recognises duplicate-key errors from every driver we run on.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
