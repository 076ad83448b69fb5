package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SwipeRepository handles database operations for Swipe
type SwipeRepository struct {
	db *gorm.DB
}

func NewSwipeRepository(db *gorm.DB) *SwipeRepository {
	return &SwipeRepository{db: db}
}

// Create inserts the swipe unless one already exists for the same
// (swiper, target) pair. It reports whether the row was inserted.
func (r *SwipeRepository) Create(ctx context.Context, swipe *model.Swipe) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "swiper_id"}, {Name: "target_id"}},
			DoNothing: true,
		}).
		Create(swipe)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// Find returns the swipe of swiperID about targetID
func (r *SwipeRepository) Find(ctx context.Context, swiperID, targetID uuid.UUID) (*model.Swipe, error) {
	var swipe model.Swipe
	err := r.db.WithContext(ctx).
		Where("swiper_id = ? AND target_id = ?", swiperID, targetID).
		First(&swipe).Error
	if err != nil {
		return nil, err
	}
	return &swipe, nil
}

// TargetIDs returns everyone swiperID has already decided about
func (r *SwipeRepository) TargetIDs(ctx context.Context, swiperID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := r.db.WithContext(ctx).Model(&model.Swipe{}).
		Where("swiper_id = ?", swiperID).
		Pluck("target_id", &ids).Error
	return ids, err
}
