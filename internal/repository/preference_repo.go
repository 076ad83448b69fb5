package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceRepository handles database operations for Preference
type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// FindByUserID returns the preference of a user
func (r *PreferenceRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Preference, error) {
	var pref model.Preference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// FindOrCreateDefault returns the stored preference, creating the defaults
// when the user has none yet
func (r *PreferenceRepository) FindOrCreateDefault(ctx context.Context, userID uuid.UUID) (*model.Preference, error) {
	pref := model.DefaultPreference(userID)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(pref).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUserID(ctx, userID)
}

// Upsert stores the full preference
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *model.Preference) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"min_age", "max_age", "max_distance_km", "genders", "updated_at"}),
	}).Create(pref).Error
}
