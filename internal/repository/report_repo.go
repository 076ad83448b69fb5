package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportRepository handles database operations for Report and moderation
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a report and reports false when the reporter already
// reported the same user
func (r *ReportRepository) Create(ctx context.Context, report *model.Report) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reporter_id"}, {Name: "reported_id"}},
			DoNothing: true,
		}).
		Omit(clause.Associations).
		Create(report)
	return res.RowsAffected == 1, res.Error
}

// FindByID finds a report by ID
func (r *ReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var report model.Report
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns a page of reports, oldest first, optionally filtered by status
func (r *ReportRepository) List(ctx context.Context, status model.ReportStatus, offset, limit int) ([]model.Report, int64, error) {
	reports := []model.Report{}
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Reporter").
		Preload("Reported").
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&reports).Error
	return reports, total, err
}

// Dismiss closes a pending report without action
func (r *ReportRepository) Dismiss(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Report{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": model.ReportStatusDismissed, "resolved_at": at}).Error
}

// BanUser flags the user as banned, deletes every match they are part of
// with its messages, deletes the messages they sent, and resolves all
// pending reports against them. Returns the ids of the deleted matches.
func (r *ReportRepository) BanUser(ctx context.Context, userID uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	var matchIDs []uuid.UUID
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the row lock taken here is what MatchRepository.CreateOrGet waits on
		if err := tx.Model(&model.User{}).Where("id = ?", userID).Update("is_banned", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Match{}).
			Where("user_a_id = ? OR user_b_id = ?", userID, userID).
			Pluck("id", &matchIDs).Error; err != nil {
			return err
		}
		if err := deleteMatches(tx, matchIDs); err != nil {
			return err
		}
		if err := tx.Where("sender_id = ?", userID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		return tx.Model(&model.Report{}).
			Where("reported_id = ? AND status = ?", userID, model.ReportStatusPending).
			Updates(map[string]interface{}{"status": model.ReportStatusResolved, "resolved_at": at}).Error
	})
	return matchIDs, err
}
