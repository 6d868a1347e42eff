package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MatchStatus string

const (
	MatchActive MatchStatus = "ACTIVE"
	MatchEnded  MatchStatus = "ENDED"
)

// Valid reports whether s is a known status.
func (s MatchStatus) Valid() bool {
	return s == MatchActive || s == MatchEnded
}

// Match is the symmetric relationship created once two users have
// expressed interest in each other. The pair is stored normalized
// (UserAID < UserBID) so idx_match_pair covers the unordered pair.
type Match struct {
	ID        string      `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserAID   string      `gorm:"type:varchar(36);not null;uniqueIndex:idx_match_pair" json:"user_a_id"`
	UserBID   string      `gorm:"type:varchar(36);not null;uniqueIndex:idx_match_pair;index:idx_match_user_b" json:"user_b_id"`
	Status    MatchStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (Match) TableName() string { return "matches" }

func (m *Match) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// IsParticipant reports whether userID is one of the two matched users.
func (m *Match) IsParticipant(userID string) bool {
	return userID != "" && (m.UserAID == userID || m.UserBID == userID)
}

// OtherUser returns the partner of userID, or "" if userID is not in the match.
func (m *Match) OtherUser(userID string) string {
	switch userID {
	case m.UserAID:
		return m.UserBID
	case m.UserBID:
		return m.UserAID
	}
	return ""
}

// NormalizePair orders two user ids so (a, b) and (b, a) share one key.
func NormalizePair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
