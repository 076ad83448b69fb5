package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/clock"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/messenger"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/ratelimit"
	"github.com/quocanhngo/spark/internal/repository"
)

// SwipeService records swipe decisions and detects mutual interest
type SwipeService struct {
	userRepo  *repository.UserRepository
	swipeRepo *repository.SwipeRepository
	matchRepo *repository.MatchRepository
	blockRepo *repository.BlockRepository
	limiter   *ratelimit.Limiter
	messenger *messenger.Messenger
	notifier  Notifier
	clock     clock.Clock
}

func NewSwipeService(
	userRepo *repository.UserRepository,
	swipeRepo *repository.SwipeRepository,
	matchRepo *repository.MatchRepository,
	blockRepo *repository.BlockRepository,
	limiter *ratelimit.Limiter,
	msgr *messenger.Messenger,
	notifier Notifier,
	clk clock.Clock,
) *SwipeService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if clk == nil {
		clk = clock.RealClockProvider()
	}
	return &SwipeService{
		userRepo:  userRepo,
		swipeRepo: swipeRepo,
		matchRepo: matchRepo,
		blockRepo: blockRepo,
		limiter:   limiter,
		messenger: msgr,
		notifier:  notifier,
		clock:     clk,
	}
}

// Swipe records the decision of swiperID about targetID. When it completes
// a mutually positive pair, exactly one match exists afterwards and both
// sides of a race get its id.
//
// Preconditions fail in this order: self, banned swiper, rate limit,
// unknown or banned target, already decided.
func (s *SwipeService) Swipe(ctx context.Context, swiperID, targetID uuid.UUID, direction model.Direction) (*model.SwipeResponse, error) {
	if !direction.Valid() {
		return nil, ErrInvalidDirection
	}
	if swiperID == targetID {
		return nil, ErrSelfAction
	}
	if _, err := activeUser(ctx, s.userRepo, swiperID); err != nil {
		return nil, err
	}
	if err := allow(ctx, s.limiter, swiperID, ratelimit.KindSwipe); err != nil {
		return nil, err
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTargetNotFound
		}
		return nil, err
	}
	if target.IsBanned {
		return nil, ErrTargetNotFound
	}
	blocked, err := s.blockRepo.ExistsEither(ctx, swiperID, targetID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrTargetNotFound
	}

	// Committed on its own so a concurrent reciprocal swipe can see it
	inserted, err := s.swipeRepo.Create(ctx, &model.Swipe{
		SwiperID:  swiperID,
		TargetID:  targetID,
		Direction: direction,
	})
	if err != nil {
		return nil, fmt.Errorf("record swipe: %w", err)
	}
	if !inserted {
		return nil, ErrAlreadyDecided
	}

	if !direction.Positive() {
		return &model.SwipeResponse{}, nil
	}

	back, err := s.swipeRepo.Find(ctx, targetID, swiperID)
	if err != nil {
		if isNotFound(err) {
			return &model.SwipeResponse{}, nil
		}
		return nil, err
	}
	if !back.Direction.Positive() {
		return &model.SwipeResponse{}, nil
	}

	match, created, err := s.matchRepo.CreateOrGet(ctx, swiperID, targetID)
	if errors.Is(err, repository.ErrPairUnavailable) {
		// blocked or banned after the checks above; the swipe stays recorded
		logger.Info("match skipped", "swiper_id", swiperID, "target_id", targetID)
		return &model.SwipeResponse{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}
	if created {
		logger.Info("match created", "match_id", match.ID, "user_a_id", match.UserAID, "user_b_id", match.UserBID)
		s.announce(ctx, match)
	}

	return &model.SwipeResponse{MatchCreated: true, MatchID: &match.ID}, nil
}

// announce pushes match:new to both users. Delivery is best effort; the
// match is already committed.
func (s *SwipeService) announce(ctx context.Context, match *model.Match) {
	users, err := s.userRepo.FindByIDs(ctx, []uuid.UUID{match.UserAID, match.UserBID})
	if err != nil || len(users) != 2 {
		logger.Warn("match announcement skipped", "match_id", match.ID, "error", err)
		return
	}
	a, b := &users[0], &users[1]
	if a.ID != match.UserAID {
		a, b = b, a
	}

	now := s.clock.Now()
	for _, pair := range [][2]*model.User{{a, b}, {b, a}} {
		event := model.MatchEvent{MatchID: match.ID, Partner: partnerOf(pair[1], now)}
		if err := s.messenger.PublishMatch(ctx, pair[0].ID, event); err != nil {
			logger.Warn("match event not delivered", "match_id", match.ID, "user_id", pair[0].ID, "error", err)
		}
	}
	s.notifier.NotifyMatch(match, a, b)
}
