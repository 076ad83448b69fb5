package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/clock"
	"github.com/quocanhngo/spark/internal/geo"
	"github.com/quocanhngo/spark/internal/logger"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/repository"
	"github.com/quocanhngo/spark/pkg/storage"
	"gorm.io/datatypes"
)

// ProfileService manages the caller's own profile, photos and devices
type ProfileService struct {
	userRepo  *repository.UserRepository
	photoRepo *repository.PhotoRepository
	storage   storage.Storage
	clock     clock.Clock
}

// NewProfileService creates the service. store may be nil when object
// storage is down; photo uploads then fail with ErrStorageUnavailable.
func NewProfileService(
	userRepo *repository.UserRepository,
	photoRepo *repository.PhotoRepository,
	store storage.Storage,
	clk clock.Clock,
) *ProfileService {
	if clk == nil {
		clk = clock.RealClockProvider()
	}
	return &ProfileService{
		userRepo:  userRepo,
		photoRepo: photoRepo,
		storage:   store,
		clock:     clk,
	}
}

// GetProfile returns the current user's profile
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindProfile(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	resp := user.ToResponse(ageOf(user, s.clock.Now()))
	return &resp, nil
}

// UpdateProfile updates name, bio, city and interests. Absent fields are kept.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req model.UpdateProfileRequest) (*model.UserResponse, error) {
	updates := map[string]interface{}{}
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.City != nil {
		updates["city"] = strings.TrimSpace(*req.City)
	}
	if req.Interests != nil {
		updates["interests"] = datatypes.JSONSlice[string](normalizeInterests(req.Interests))
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// UpdateLocation stores the caller's coordinates
func (s *ProfileService) UpdateLocation(ctx context.Context, userID uuid.UUID, req model.UpdateLocationRequest) (*model.UserResponse, error) {
	if req.Latitude == nil || req.Longitude == nil || !geo.ValidCoordinates(*req.Latitude, *req.Longitude) {
		return nil, ErrInvalidCoordinates
	}
	if err := s.userRepo.UpdateLocation(ctx, userID, *req.Latitude, *req.Longitude); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// AddPhoto uploads a photo. The first photo becomes the primary one.
func (s *ProfileService) AddPhoto(ctx context.Context, userID uuid.UUID, file multipart.File, header *multipart.FileHeader) (*model.Photo, error) {
	if s.storage == nil {
		return nil, ErrStorageUnavailable
	}

	count, err := s.photoRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxPhotos {
		return nil, ErrTooManyPhotos
	}

	result, err := s.storage.Upload(ctx, file, header, "photos/"+userID.String())
	if err != nil {
		return nil, err
	}

	photo := &model.Photo{UserID: userID, URL: result.URL, Key: result.Key}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		if delErr := s.storage.Delete(ctx, result.Key); delErr != nil {
			logger.Warn("orphaned photo object", "key", result.Key, "error", delErr)
		}
		return nil, fmt.Errorf("save photo: %w", err)
	}
	return photo, nil
}

// DeletePhoto removes one of the caller's photos
func (s *ProfileService) DeletePhoto(ctx context.Context, userID, photoID uuid.UUID) error {
	photo, err := s.photoRepo.FindByID(ctx, photoID, userID)
	if err != nil {
		if isNotFound(err) {
			return ErrPhotoNotFound
		}
		return err
	}
	if err := s.photoRepo.Delete(ctx, photo); err != nil {
		return err
	}
	if s.storage != nil && photo.Key != "" {
		if err := s.storage.Delete(ctx, photo.Key); err != nil {
			logger.Warn("failed to delete photo object", "key", photo.Key, "error", err)
		}
	}
	return nil
}

// SetPrimaryPhoto marks one of the caller's photos as primary
func (s *ProfileService) SetPrimaryPhoto(ctx context.Context, userID, photoID uuid.UUID) error {
	err := s.photoRepo.SetPrimary(ctx, userID, photoID)
	if isNotFound(err) {
		return ErrPhotoNotFound
	}
	return err
}

// RegisterDevice registers a new device for push notifications
func (s *ProfileService) RegisterDevice(ctx context.Context, userID uuid.UUID, req model.RegisterDeviceRequest) error {
	return s.userRepo.AddDevice(ctx, userID, req.FCMToken, req.DeviceType)
}

// normalizeInterests lowercases, trims and de-duplicates tags keeping order
func normalizeInterests(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, tag := range in {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
