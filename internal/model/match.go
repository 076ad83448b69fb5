package model

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Match is a mutually positive pair. UserAID < UserBID always holds.
type Match struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserAID   uuid.UUID `json:"user_a_id" gorm:"type:uuid;not null;uniqueIndex:idx_matches_pair,priority:1"`
	UserBID   uuid.UUID `json:"user_b_id" gorm:"type:uuid;not null;uniqueIndex:idx_matches_pair,priority:2;index"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	UserA User `json:"-" gorm:"foreignKey:UserAID"`
	UserB User `json:"-" gorm:"foreignKey:UserBID"`
}

func (m *Match) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// NewMatch builds a match with its pair in canonical order
func NewMatch(u1, u2 uuid.UUID) *Match {
	a, b := CanonicalPair(u1, u2)
	return &Match{UserAID: a, UserBID: b}
}

// CanonicalPair orders two ids so that the first is the smaller one.
// Byte order of a UUID equals the order of its canonical string form.
func CanonicalPair(u1, u2 uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(u1[:], u2[:]) <= 0 {
		return u1, u2
	}
	return u2, u1
}

// HasUser reports whether userID is one of the two participants
func (m *Match) HasUser(userID uuid.UUID) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// PartnerOf returns the other participant
func (m *Match) PartnerOf(userID uuid.UUID) uuid.UUID {
	if m.UserAID == userID {
		return m.UserBID
	}
	return m.UserAID
}
