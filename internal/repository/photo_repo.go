package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/model"
	"gorm.io/gorm"
)

// PhotoRepository handles database operations for profile photos
type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create inserts a photo, making it primary when it is the user's first
func (r *PhotoRepository) Create(ctx context.Context, photo *model.Photo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Photo{}).Where("user_id = ?", photo.UserID).Count(&count).Error; err != nil {
			return err
		}
		photo.IsPrimary = count == 0
		return tx.Create(photo).Error
	})
}

// CountByUser counts a user's photos
func (r *PhotoRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Photo{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// FindByID finds a photo owned by userID
func (r *PhotoRepository) FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Photo, error) {
	var photo model.Photo
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// Delete removes a photo and promotes the oldest remaining one when the
// primary photo was removed
func (r *PhotoRepository) Delete(ctx context.Context, photo *model.Photo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Photo{}, "id = ?", photo.ID).Error; err != nil {
			return err
		}
		if !photo.IsPrimary {
			return nil
		}

		var next model.Photo
		err := tx.Where("user_id = ?", photo.UserID).Order("created_at ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_primary", true).Error
	})
}

// SetPrimary makes photoID the user's only primary photo
func (r *PhotoRepository) SetPrimary(ctx context.Context, userID, photoID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Photo{}).
			Where("user_id = ?", userID).
			Update("is_primary", false).Error; err != nil {
			return err
		}
		res := tx.Model(&model.Photo{}).
			Where("id = ? AND user_id = ?", photoID, userID).
			Update("is_primary", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
