package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message length bounds in characters
const (
	MinMessageLength = 1
	MaxMessageLength = 1000
)

// Message represents a chat message inside a match.
// ReadAt is set once by the recipient and never cleared.
type Message struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	MatchID   uuid.UUID  `json:"match_id" gorm:"type:uuid;not null;index:idx_messages_match_created,priority:1"`
	SenderID  uuid.UUID  `json:"sender_id" gorm:"type:uuid;not null;index"`
	Text      string     `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time  `json:"created_at" gorm:"index:idx_messages_match_created,priority:2"`
	ReadAt    *time.Time `json:"read_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
