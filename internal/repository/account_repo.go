package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/model"
	"gorm.io/gorm"
)

// AccountRepository reads and erases everything a user owns
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Export collects the user's data in one read transaction. The caller sets
// ExportedAt and the profile age.
func (r *AccountRepository) Export(ctx context.Context, userID uuid.UUID) (*model.AccountExport, *model.User, error) {
	var (
		user model.User
		out  = &model.AccountExport{
			SwipesGiven: []model.Swipe{},
			Matches:     []model.MatchExport{},
			Blocks:      []model.Block{},
			Reports:     []model.Report{},
		}
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).First(&user, "id = ?", userID).Error; err != nil {
			return err
		}

		var pref model.Preference
		err := tx.First(&pref, "user_id = ?", userID).Error
		switch {
		case err == nil:
			out.Preference = &pref
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Where("swiper_id = ?", userID).Order("created_at DESC").Find(&out.SwipesGiven).Error; err != nil {
			return err
		}
		if err := tx.Where("blocker_id = ?", userID).Order("created_at DESC").Find(&out.Blocks).Error; err != nil {
			return err
		}
		if err := tx.Where("reporter_id = ?", userID).Order("created_at DESC").Find(&out.Reports).Error; err != nil {
			return err
		}

		var matches []model.Match
		if err := tx.Where("user_a_id = ? OR user_b_id = ?", userID, userID).
			Order("created_at DESC").
			Find(&matches).Error; err != nil {
			return err
		}
		for _, m := range matches {
			export := model.MatchExport{
				ID:        m.ID,
				PartnerID: m.PartnerOf(userID),
				CreatedAt: m.CreatedAt,
				Messages:  []model.Message{},
			}
			if err := tx.Where("match_id = ?", m.ID).
				Order("created_at ASC").
				Order("id ASC").
				Find(&export.Messages).Error; err != nil {
				return err
			}
			out.Matches = append(out.Matches, export)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, &user, nil
}

// Delete erases the user and every row that references them. It returns the
// deleted photos so their objects can be removed from storage.
func (r *AccountRepository) Delete(ctx context.Context, userID uuid.UUID) ([]model.Photo, error) {
	var photos []model.Photo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var matchIDs []uuid.UUID
		if err := tx.Model(&model.Match{}).
			Where("user_a_id = ? OR user_b_id = ?", userID, userID).
			Pluck("id", &matchIDs).Error; err != nil {
			return err
		}
		if err := deleteMatches(tx, matchIDs); err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).Find(&photos).Error; err != nil {
			return err
		}

		for _, q := range []struct {
			row   any
			where string
		}{
			{&model.Swipe{}, "swiper_id = ? OR target_id = ?"},
			{&model.Block{}, "blocker_id = ? OR blocked_id = ?"},
			{&model.Report{}, "reporter_id = ? OR reported_id = ?"},
		} {
			if err := tx.Where(q.where, userID, userID).Delete(q.row).Error; err != nil {
				return err
			}
		}
		for _, m := range []any{&model.Photo{}, &model.UserDevice{}, &model.Preference{}} {
			if err := tx.Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", userID).Delete(&model.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return photos, err
}
