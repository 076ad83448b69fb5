package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/clock"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/repository"
	"github.com/quocanhngo/spark/pkg/storage"
	"golang.org/x/crypto/bcrypt"
)

// TokenRevoker ends the session a token belongs to
type TokenRevoker interface {
	Logout(ctx context.Context, tokenString string) error
}

// AccountService exports and erases a user's data
type AccountService struct {
	accountRepo *repository.AccountRepository
	userRepo    *repository.UserRepository
	storage     storage.Storage
	revoker     TokenRevoker
	clock       clock.Clock
}

func NewAccountService(
	accountRepo *repository.AccountRepository,
	userRepo *repository.UserRepository,
	store storage.Storage,
	revoker TokenRevoker,
	clk clock.Clock,
) *AccountService {
	if clk == nil {
		clk = clock.RealClockProvider()
	}
	return &AccountService{
		accountRepo: accountRepo,
		userRepo:    userRepo,
		storage:     store,
		revoker:     revoker,
		clock:       clk,
	}
}

// Export returns every profile, swipe, match, message, block and report
// row stored for userID
func (s *AccountService) Export(ctx context.Context, userID uuid.UUID) (*model.AccountExport, error) {
	out, user, err := s.accountRepo.Export(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("export account: %w", err)
	}
	now := s.clock.Now()
	out.ExportedAt = now
	out.Profile = user.ToResponse(ageOf(user, now))
	return out, nil
}

// Delete erases the account after the password was confirmed, removes its
// photo objects and revokes token
func (s *AccountService) Delete(ctx context.Context, userID uuid.UUID, req model.DeleteAccountRequest, token string) (*model.DeleteAccountResponse, error) {
	if req.Confirmation != model.AccountDeleteConfirmation {
		return nil, ErrNotConfirmed
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrWrongPassword
	}

	photos, err := s.accountRepo.Delete(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("delete account: %w", err)
	}

	if s.storage != nil {
		for _, p := range photos {
			if p.Key == "" {
				continue
			}
			if err := s.storage.Delete(ctx, p.Key); err != nil {
				logger.Warn("failed to delete photo object", "user_id", userID, "key", p.Key, "error", err)
			}
		}
	}
	if s.revoker != nil && token != "" {
		if err := s.revoker.Logout(ctx, token); err != nil {
			logger.Warn("failed to revoke token of deleted account", "user_id", userID, "error", err)
		}
	}

	logger.Info("account deleted", "user_id", userID, "photos", len(photos))
	return &model.DeleteAccountResponse{DeletedAt: s.clock.Now()}, nil
}
