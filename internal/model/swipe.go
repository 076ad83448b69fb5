package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Direction of a swipe decision
type Direction string

const (
	DirectionLeft  Direction = "LEFT"
	DirectionRight Direction = "RIGHT"
	DirectionSuper Direction = "SUPER"
)

func (d Direction) Valid() bool {
	return d == DirectionLeft || d == DirectionRight || d == DirectionSuper
}

// Positive reports whether the direction signals interest
func (d Direction) Positive() bool {
	return d == DirectionRight || d == DirectionSuper
}

// Swipe is a one-time decision of SwiperID about TargetID. Immutable.
type Swipe struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SwiperID  uuid.UUID `json:"swiper_id" gorm:"type:uuid;not null;uniqueIndex:idx_swipes_pair,priority:1"`
	TargetID  uuid.UUID `json:"target_id" gorm:"type:uuid;not null;uniqueIndex:idx_swipes_pair,priority:2;index"`
	Direction Direction `json:"direction" gorm:"type:varchar(10);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (s *Swipe) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
