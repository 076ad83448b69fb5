package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlockRepository handles database operations for Block
type BlockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// Create stores the block and, in the same transaction, deletes any match
// between the two users together with its messages. Both user rows are
// locked first, like in MatchRepository.CreateOrGet. It reports false when
// the block already existed.
func (r *BlockRepository) Create(ctx context.Context, block *model.Block) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// waits out a CreateOrGet in flight for the same pair
		if _, err := lockUsers(tx, block.BlockerID, block.BlockedID); err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_id"}},
			DoNothing: true,
		}).Create(block)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true

		a, b := model.CanonicalPair(block.BlockerID, block.BlockedID)
		var matchIDs []uuid.UUID
		if err := tx.Model(&model.Match{}).
			Where("user_a_id = ? AND user_b_id = ?", a, b).
			Pluck("id", &matchIDs).Error; err != nil {
			return err
		}
		return deleteMatches(tx, matchIDs)
	})
	return created, err
}

// Delete removes the block of blockerID on blockedID and reports whether one existed
func (r *BlockRepository) Delete(ctx context.Context, blockerID, blockedID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&model.Block{})
	return res.RowsAffected > 0, res.Error
}

// ExistsEither reports whether either user blocked the other
func (r *BlockRepository) ExistsEither(ctx context.Context, u1, u2 uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", u1, u2, u2, u1).
		Count(&count).Error
	return count > 0, err
}

// RelatedIDs returns everyone userID blocked or was blocked by
func (r *BlockRepository) RelatedIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var blocked, blockers []uuid.UUID
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.Block{}).Where("blocker_id = ?", userID).Pluck("blocked_id", &blocked).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Block{}).Where("blocked_id = ?", userID).Pluck("blocker_id", &blockers).Error; err != nil {
		return nil, err
	}
	return append(blocked, blockers...), nil
}

// ListByBlocker returns the blocks userID created, newest first
func (r *BlockRepository) ListByBlocker(ctx context.Context, userID uuid.UUID) ([]model.Block, error) {
	blocks := []model.Block{}
	err := r.db.WithContext(ctx).
		Where("blocker_id = ?", userID).
		Order("created_at DESC").
		Find(&blocks).Error
	return blocks, err
}
