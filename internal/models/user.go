package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the directory record the core resolves participants against.
// Profile editing lives outside this service; only the fields the
// swipe and chat flows read are mapped here.
type User struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	DisplayName string    `gorm:"type:varchar(64);not null" json:"display_name"`
	TelegramID  *int64    `gorm:"uniqueIndex" json:"-"` // optional chat id for match notifications
	Region      string    `gorm:"type:varchar(64);index" json:"region,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

// BeforeCreate is a GORM hook that generates a UUID if the ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
