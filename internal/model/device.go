package model

import (
	"time"

	"github.com/google/uuid"
)

// UserDevice is a push notification target
type UserDevice struct {
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey"`
	FCMToken     string    `json:"fcm_token" gorm:"primaryKey;size:500"`
	DeviceType   string    `json:"device_type" gorm:"size:20"`
	LastActiveAt time.Time `json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
}
