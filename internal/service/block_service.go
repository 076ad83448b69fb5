package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/ratelimit"
	"github.com/quocanhngo/spark/internal/repository"
)

// BlockService hides users from each other and ends their match
type BlockService struct {
	userRepo  *repository.UserRepository
	blockRepo *repository.BlockRepository
	limiter   *ratelimit.Limiter
}

func NewBlockService(
	userRepo *repository.UserRepository,
	blockRepo *repository.BlockRepository,
	limiter *ratelimit.Limiter,
) *BlockService {
	return &BlockService{
		userRepo:  userRepo,
		blockRepo: blockRepo,
		limiter:   limiter,
	}
}

// Block records that blockerID blocks blockedID and deletes any match
// between them in the same transaction
func (s *BlockService) Block(ctx context.Context, blockerID, blockedID uuid.UUID) (*model.Block, error) {
	if blockerID == blockedID {
		return nil, ErrSelfAction
	}
	if _, err := activeUser(ctx, s.userRepo, blockerID); err != nil {
		return nil, err
	}
	if err := allow(ctx, s.limiter, blockerID, ratelimit.KindBlock); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, blockedID); err != nil {
		if isNotFound(err) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}

	block := &model.Block{BlockerID: blockerID, BlockedID: blockedID}
	created, err := s.blockRepo.Create(ctx, block)
	if err != nil {
		return nil, fmt.Errorf("create block: %w", err)
	}
	if !created {
		return nil, ErrAlreadyBlocked
	}

	logger.Info("user blocked", "blocker_id", blockerID, "blocked_id", blockedID)
	return block, nil
}

// Unblock removes a block. Swipes and matches removed by the block stay gone.
func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID uuid.UUID) error {
	deleted, err := s.blockRepo.Delete(ctx, blockerID, blockedID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotBlocked
	}
	return nil
}

// ListBlocked returns the blocks the caller created
func (s *BlockService) ListBlocked(ctx context.Context, blockerID uuid.UUID) ([]model.Block, error) {
	return s.blockRepo.ListByBlocker(ctx, blockerID)
}
