package models

import "time"

// Interest is one user's directional swipe/like towards another.
// (FromUserID, ToUserID) is unique; the record is toggled, never duplicated.
type Interest struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	FromUserID string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_interest_pair" json:"from_user_id"`
	ToUserID   string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_interest_pair;index:idx_interest_to" json:"to_user_id"`
	Liked      bool       `gorm:"not null;default:false" json:"liked"`
	LikedAt    *time.Time `json:"liked_at,omitempty"`
	SwipedAt   time.Time  `gorm:"not null" json:"swiped_at"`
}

func (Interest) TableName() string { return "interests" }
