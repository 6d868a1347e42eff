package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRoom is the chat channel bound 1:1 to a Match.
type ChatRoom struct {
	// ID is the unique identifier for the chat room (UUID).
	ID string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	// MatchID references the match this room belongs to; unique per match.
	MatchID string `gorm:"type:varchar(36);not null;uniqueIndex" json:"match_id"`
	// CreatedAt is the timestamp when the chat room was created.
	CreatedAt time.Time `json:"created_at"`
}

func (ChatRoom) TableName() string { return "chat_rooms" }

func (r *ChatRoom) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
