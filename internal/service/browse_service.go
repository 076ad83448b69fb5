package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/clock"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/ranker"
	"github.com/quocanhngo/spark/internal/repository"
	"gorm.io/datatypes"
)

// BrowseService builds the candidate feed and owns search preferences
type BrowseService struct {
	userRepo  *repository.UserRepository
	prefRepo  *repository.PreferenceRepository
	swipeRepo *repository.SwipeRepository
	blockRepo *repository.BlockRepository
	clock     clock.Clock
	limit     int
}

func NewBrowseService(
	userRepo *repository.UserRepository,
	prefRepo *repository.PreferenceRepository,
	swipeRepo *repository.SwipeRepository,
	blockRepo *repository.BlockRepository,
	clk clock.Clock,
	limit int,
) *BrowseService {
	if clk == nil {
		clk = clock.RealClockProvider()
	}
	if limit <= 0 {
		limit = ranker.DefaultLimit
	}
	return &BrowseService{
		userRepo:  userRepo,
		prefRepo:  prefRepo,
		swipeRepo: swipeRepo,
		blockRepo: blockRepo,
		clock:     clk,
		limit:     limit,
	}
}

// GetPreference returns the caller's preference, creating defaults on first read
func (s *BrowseService) GetPreference(ctx context.Context, userID uuid.UUID) (*model.Preference, error) {
	return s.prefRepo.FindOrCreateDefault(ctx, userID)
}

// UpdatePreference validates and stores the caller's preference
func (s *BrowseService) UpdatePreference(ctx context.Context, userID uuid.UUID, req model.UpdatePreferenceRequest) (*model.Preference, error) {
	if err := validatePreference(req); err != nil {
		return nil, err
	}

	genders := make(datatypes.JSONSlice[model.Gender], 0, len(req.Genders))
	seen := map[model.Gender]bool{}
	for _, g := range req.Genders {
		if !seen[g] {
			seen[g] = true
			genders = append(genders, g)
		}
	}

	pref := &model.Preference{
		UserID:        userID,
		MinAge:        req.MinAge,
		MaxAge:        req.MaxAge,
		MaxDistanceKm: req.MaxDistanceKm,
		Genders:       genders,
	}
	if err := s.prefRepo.Upsert(ctx, pref); err != nil {
		return nil, err
	}
	return s.prefRepo.FindByUserID(ctx, userID)
}

func validatePreference(req model.UpdatePreferenceRequest) error {
	switch {
	case req.MinAge < model.MinAllowedAge || req.MaxAge > model.MaxAllowedAge:
		return fmt.Errorf("%w: ages must be within [%d, %d]", ErrInvalidPreference, model.MinAllowedAge, model.MaxAllowedAge)
	case req.MinAge > req.MaxAge:
		return fmt.Errorf("%w: min_age must not exceed max_age", ErrInvalidPreference)
	case req.MaxDistanceKm < model.MinAllowedDistance || req.MaxDistanceKm > model.MaxAllowedDistance:
		return fmt.Errorf("%w: max_distance_km must be within [%d, %d]", ErrInvalidPreference, model.MinAllowedDistance, model.MaxAllowedDistance)
	case len(req.Genders) == 0:
		return fmt.Errorf("%w: at least one gender is required", ErrInvalidPreference)
	}
	for _, g := range req.Genders {
		if !g.Valid() {
			return fmt.Errorf("%w: unknown gender %q", ErrInvalidPreference, g)
		}
	}
	return nil
}

// Browse ranks the candidates the seeker has not decided about yet
func (s *BrowseService) Browse(ctx context.Context, seekerID uuid.UUID) (*model.BrowseResponse, error) {
	seeker, err := s.userRepo.FindByID(ctx, seekerID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	pref, err := s.prefRepo.FindByUserID(ctx, seekerID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoPreference
		}
		return nil, err
	}
	if !seeker.HasLocation() {
		return nil, ErrNoLocation
	}

	excluded, err := s.excludedIDs(ctx, seekerID)
	if err != nil {
		return nil, err
	}

	pool, err := s.userRepo.BrowsePool(ctx, seekerID)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	candidates, err := ranker.Rank(ranker.Request{
		Seeker:     seeker,
		Preference: pref,
		Excluded:   excluded,
		AsOf:       s.clock.Now(),
		Limit:      s.limit,
	}, pool)
	switch {
	case errors.Is(err, ranker.ErrNoPreference):
		return nil, ErrNoPreference
	case errors.Is(err, ranker.ErrNoLocation):
		return nil, ErrNoLocation
	case err != nil:
		return nil, err
	}

	return &model.BrowseResponse{Candidates: candidates}, nil
}

func (s *BrowseService) excludedIDs(ctx context.Context, seekerID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	swiped, err := s.swipeRepo.TargetIDs(ctx, seekerID)
	if err != nil {
		return nil, fmt.Errorf("load swipes: %w", err)
	}
	blocked, err := s.blockRepo.RelatedIDs(ctx, seekerID)
	if err != nil {
		return nil, fmt.Errorf("load blocks: %w", err)
	}

	excluded := make(map[uuid.UUID]struct{}, len(swiped)+len(blocked))
	for _, id := range swiped {
		excluded[id] = struct{}{}
	}
	for _, id := range blocked {
		excluded[id] = struct{}{}
	}
	return excluded, nil
}
