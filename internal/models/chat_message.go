package models

import "time"

// ChatMessage represents a saved chat message.
// ID is assigned by the database in accepted order and breaks ties
// between messages with the same SentAt.
type ChatMessage struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// RoomID is the identifier of the chat room where the message was sent.
	RoomID string `gorm:"type:varchar(36);not null;index:idx_room_msg" json:"room_id"`
	// SenderID is the ID of the user who sent the message.
	SenderID string `gorm:"type:varchar(36);not null;index:idx_room_msg" json:"sender_id"`
	// Content is the text of the message.
	Content string `gorm:"type:varchar(1000);not null" json:"content"`
	// SentAt is when the message was accepted by the log.
	SentAt time.Time `gorm:"not null;index" json:"sent_at"`
	// IsRead flips to true once the other participant reads the room. It never flips back.
	IsRead bool `gorm:"not null;default:false" json:"is_read"`

	// SenderName is the sender's display name, resolved when the message is served.
	SenderName string `gorm:"-" json:"sender_name,omitempty"`
}

func (ChatMessage) TableName() string { return "chat_messages" }
