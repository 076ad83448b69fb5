package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRepository handles database operations for Match
type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// ErrPairUnavailable means two users may not be matched: one of them is
// missing or banned, or a block exists between them
var ErrPairUnavailable = errors.New("pair cannot be matched")

// CreateOrGet inserts the match for the canonical pair of u1 and u2. When
// the pair already has a match, the existing row is returned instead. The
// boolean reports whether this call created it.
//
// Both user rows stay locked until commit, the same locks Block and BanUser
// wait on, so a match is never inserted next to a block or a ban.
func (r *MatchRepository) CreateOrGet(ctx context.Context, u1, u2 uuid.UUID) (*model.Match, bool, error) {
	match := model.NewMatch(u1, u2)
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, err := lockUsers(tx, u1, u2)
		if err != nil {
			return err
		}
		if len(users) != 2 || users[0].IsBanned || users[1].IsBanned {
			return ErrPairUnavailable
		}
		var blocks int64
		if err := tx.Model(&model.Block{}).
			Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", u1, u2, u2, u1).
			Count(&blocks).Error; err != nil {
			return err
		}
		if blocks > 0 {
			return ErrPairUnavailable
		}

		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_a_id"}, {Name: "user_b_id"}},
			DoNothing: true,
		}).
			Omit(clause.Associations).
			Create(match)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			created = true
			return nil
		}

		// Lost the race: read back the winner
		var existing model.Match
		if err := tx.Where("user_a_id = ? AND user_b_id = ?", match.UserAID, match.UserBID).First(&existing).Error; err != nil {
			return err
		}
		match = &existing
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return match, created, nil
}

// lockUsers selects the given users FOR UPDATE in id order so concurrent
// callers locking the same pair queue instead of deadlocking
func lockUsers(tx *gorm.DB, ids ...uuid.UUID) ([]model.User, error) {
	var users []model.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "is_banned").
		Where("id IN ?", ids).
		Order("id").
		Find(&users).Error
	return users, err
}

// FindByID finds a match by ID
func (r *MatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Match, error) {
	var match model.Match
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// FindByPair finds the match between two users in any argument order
func (r *MatchRepository) FindByPair(ctx context.Context, u1, u2 uuid.UUID) (*model.Match, error) {
	a, b := model.CanonicalPair(u1, u2)
	var match model.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		First(&match).Error
	if err != nil {
		return nil, err
	}
	return &match, nil
}

// CountByPair counts matches between two users; it is 0 or 1
func (r *MatchRepository) CountByPair(ctx context.Context, u1, u2 uuid.UUID) (int64, error) {
	a, b := model.CanonicalPair(u1, u2)
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Match{}).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		Count(&count).Error
	return count, err
}

// ListByUser returns the user's matches newest first, with both
// participants and their photos loaded
func (r *MatchRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Match, error) {
	matches := []model.Match{}
	err := r.db.WithContext(ctx).
		Preload("UserA.Photos").
		Preload("UserB.Photos").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&matches).Error
	return matches, err
}

// deleteMatches removes the given matches and all of their messages
func deleteMatches(tx *gorm.DB, matchIDs []uuid.UUID) error {
	if len(matchIDs) == 0 {
		return nil
	}
	if err := tx.Where("match_id IN ?", matchIDs).Delete(&model.Message{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", matchIDs).Delete(&model.Match{}).Error
}
