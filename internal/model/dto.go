package model

import (
	"time"

	"github.com/google/uuid"
)

// ========== Auth DTOs ==========

type RegisterRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Birthdate string `json:"birthdate" binding:"required"` // YYYY-MM-DD
	Gender    Gender `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type RegisterDeviceRequest struct {
	FCMToken   string `json:"fcm_token" binding:"required"`
	DeviceType string `json:"device_type" binding:"required"`
}

// ========== Profile DTOs ==========

type UpdateProfileRequest struct {
	Name      string   `json:"name" binding:"omitempty,min=2,max=100"`
	Bio       *string  `json:"bio" binding:"omitempty,max=500"`
	City      *string  `json:"city" binding:"omitempty,max=100"`
	Interests []string `json:"interests" binding:"omitempty,max=20,dive,min=1,max=40"`
}

type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

type UpdatePreferenceRequest struct {
	MinAge        int      `json:"min_age" binding:"required"`
	MaxAge        int      `json:"max_age" binding:"required"`
	MaxDistanceKm int      `json:"max_distance_km" binding:"required"`
	Genders       []Gender `json:"genders" binding:"required,min=1"`
}

// CandidateSummary is one entry of the browse feed
type CandidateSummary struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Age             int       `json:"age"`
	City            string    `json:"city"`
	PrimaryPhotoURL string    `json:"primary_photo_url"`
	Interests       []string  `json:"interests"`
	DistanceKm      float64   `json:"distance_km"`
}

type BrowseResponse struct {
	Candidates []CandidateSummary `json:"candidates"`
}

// ========== Swipe / Match DTOs ==========

type SwipeRequest struct {
	TargetID  uuid.UUID `json:"target_id" binding:"required"`
	Direction Direction `json:"direction" binding:"required,oneof=LEFT RIGHT SUPER"`
}

type SwipeResponse struct {
	MatchCreated bool       `json:"match_created"`
	MatchID      *uuid.UUID `json:"match_id,omitempty"`
}

type MatchPartner struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Age             int       `json:"age,omitempty"`
	City            string    `json:"city"`
	PrimaryPhotoURL string    `json:"primary_photo_url"`
}

type MatchResponse struct {
	ID          uuid.UUID    `json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	Partner     MatchPartner `json:"partner"`
	LastMessage *Message     `json:"last_message"`
	UnreadCount int64        `json:"unread_count"`
}

type BlockRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// ========== Message DTOs ==========

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type MarkReadRequest struct {
	MessageIDs []uuid.UUID `json:"message_ids"`
}

type MarkReadResponse struct {
	UpdatedCount int `json:"updated_count"`
}

type MessageListRequest struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=50"`
}

type MessageListResponse struct {
	Messages []Message `json:"messages"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	HasMore  bool      `json:"has_more"`
}

// ========== Moderation DTOs ==========

type ReportRequest struct {
	UserID  uuid.UUID    `json:"user_id" binding:"required"`
	Reason  ReportReason `json:"reason" binding:"required,oneof=SPAM INAPPROPRIATE FAKE HARASSMENT OTHER"`
	Details string       `json:"details" binding:"max=1000"`
}

type ReportListRequest struct {
	Page   int          `form:"page,default=1"`
	Limit  int          `form:"limit,default=20"`
	Status ReportStatus `form:"status"`
}

type ReportListResponse struct {
	Reports []Report `json:"reports"`
	Total   int64    `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
}

type ReportAction string

const (
	ReportActionBan     ReportAction = "ban"
	ReportActionDismiss ReportAction = "dismiss"
)

type ResolveReportRequest struct {
	Action ReportAction `json:"action" binding:"required,oneof=ban dismiss"`
	Reason string       `json:"reason"`
}

// ========== Presence DTOs ==========

type PresenceAction string

const (
	PresenceHeartbeat  PresenceAction = "heartbeat"
	PresenceDisconnect PresenceAction = "disconnect"
)

type PresenceRequest struct {
	Action PresenceAction `json:"action" binding:"required,oneof=heartbeat disconnect"`
}

type OnlineResponse struct {
	OnlineUsers int         `json:"online_users"`
	Users       []uuid.UUID `json:"users"`
	Timestamp   time.Time   `json:"timestamp"`
}

// ========== WebSocket Event DTOs ==========

type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocket event types
const (
	// server -> client
	WSEventMessageNew  = "message:new"
	WSEventMessageRead = "message:read"
	WSEventMatchNew    = "match:new"
	WSEventTyping      = "typing"
	WSEventError       = "error"
	WSEventSubscribed  = "subscribed"

	// client -> server
	WSEventSubscribe   = "subscribe"
	WSEventUnsubscribe = "unsubscribe"
	WSEventHeartbeat   = "heartbeat"
)

// TopicPayload is sent by clients to (un)subscribe or signal typing
type TopicPayload struct {
	MatchID uuid.UUID `json:"match_id"`
}

type TypingEvent struct {
	MatchID uuid.UUID `json:"match_id"`
	UserID  uuid.UUID `json:"user_id"`
}

// ReadReceiptEvent is the payload of message:read
type ReadReceiptEvent struct {
	MatchID    uuid.UUID   `json:"match_id"`
	MessageIDs []uuid.UUID `json:"message_ids"`
	ReadBy     uuid.UUID   `json:"read_by"`
	ReadAt     time.Time   `json:"read_at"`
}

// MatchEvent is the payload of match:new
type MatchEvent struct {
	MatchID uuid.UUID    `json:"match_id"`
	Partner MatchPartner `json:"partner"`
}

// ========== Common ==========

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// UploadResponse is returned after a successful photo upload
type UploadResponse struct {
	Photo Photo `json:"photo"`
}

// ========== Account DTOs ==========

// AccountDeleteConfirmation must be sent verbatim to delete an account
const AccountDeleteConfirmation = "DELETE_ACCOUNT"

type DeleteAccountRequest struct {
	Confirmation string `json:"confirmation" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

type DeleteAccountResponse struct {
	DeletedAt time.Time `json:"deleted_at"`
}

// MatchExport is one match of the exporting user with its full history
type MatchExport struct {
	ID        uuid.UUID `json:"id"`
	PartnerID uuid.UUID `json:"partner_id"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// AccountExport is everything stored about one user
type AccountExport struct {
	ExportedAt  time.Time     `json:"exported_at"`
	Profile     UserResponse  `json:"profile"`
	Preference  *Preference   `json:"preference"`
	SwipesGiven []Swipe       `json:"swipes_given"`
	Matches     []MatchExport `json:"matches"`
	Blocks      []Block       `json:"blocks"`
	Reports     []Report      `json:"reports"`
}
