// Package storagetest opens an isolated in-memory SQLite store for package tests.
package storagetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pawpair/backend/internal/models"
	"pawpair/backend/internal/storage"
)

// NewDB returns a migrated shared-cache in-memory database unique to t.
// A single connection serialises statements the way SQLite needs while
// still letting goroutines interleave between them.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, storage.Migrate(db))
	return db
}

// NewService returns a storage.Service over NewDB without Redis.
func NewService(t testing.TB) *storage.Service {
	t.Helper()
	return storage.NewStorageService(NewDB(t), nil)
}

// CreateUser inserts a directory record and returns it.
func CreateUser(t testing.TB, s *storage.Service, displayName string) *models.User {
	t.Helper()
	u := &models.User{DisplayName: displayName}
	require.NoError(t, s.SaveUser(context.Background(), u))
	return u
}
