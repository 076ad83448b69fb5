package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Preference bounds
const (
	MinAllowedAge      = 18
	MaxAllowedAge      = 100
	MinAllowedDistance = 1
	MaxAllowedDistance = 1000
)

// Preference holds what a seeker is looking for. One per user.
type Preference struct {
	UserID        uuid.UUID                   `json:"user_id" gorm:"type:uuid;primaryKey"`
	MinAge        int                         `json:"min_age" gorm:"not null;default:18"`
	MaxAge        int                         `json:"max_age" gorm:"not null;default:35"`
	MaxDistanceKm int                         `json:"max_distance_km" gorm:"not null;default:50"`
	Genders       datatypes.JSONSlice[Gender] `json:"genders"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// DefaultPreference is created on first access
func DefaultPreference(userID uuid.UUID) *Preference {
	return &Preference{
		UserID:        userID,
		MinAge:        18,
		MaxAge:        35,
		MaxDistanceKm: 50,
		Genders:       datatypes.JSONSlice[Gender]{GenderMale, GenderFemale, GenderOther},
	}
}

// Accepts reports whether g is in the accepted set
func (p *Preference) Accepts(g Gender) bool {
	for _, want := range p.Genders {
		if want == g {
			return true
		}
	}
	return false
}
