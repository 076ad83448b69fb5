package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportReason string

const (
	ReportReasonSpam          ReportReason = "SPAM"
	ReportReasonInappropriate ReportReason = "INAPPROPRIATE"
	ReportReasonFake          ReportReason = "FAKE"
	ReportReasonHarassment    ReportReason = "HARASSMENT"
	ReportReasonOther         ReportReason = "OTHER"
)

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "PENDING"
	ReportStatusResolved  ReportStatus = "RESOLVED"
	ReportStatusDismissed ReportStatus = "DISMISSED"
)

// Report is a complaint about a user waiting for a moderator
type Report struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	ReporterID uuid.UUID    `json:"reporter_id" gorm:"type:uuid;not null;uniqueIndex:idx_reports_pair,priority:1"`
	ReportedID uuid.UUID    `json:"reported_id" gorm:"type:uuid;not null;uniqueIndex:idx_reports_pair,priority:2;index"`
	Reason     ReportReason `json:"reason" gorm:"type:varchar(20);not null"`
	Details    string       `json:"details" gorm:"type:text"`
	Status     ReportStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	CreatedAt  time.Time    `json:"created_at"`
	ResolvedAt *time.Time   `json:"resolved_at"`

	// Relations
	Reporter *User `json:"reporter,omitempty" gorm:"foreignKey:ReporterID"`
	Reported *User `json:"reported,omitempty" gorm:"foreignKey:ReportedID"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
