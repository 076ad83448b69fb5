package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository handles database operations for User
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by UUID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindProfile finds a user with photos loaded
func (r *UserRepository) FindProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs loads several users with their photos
func (r *UserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	users := []model.User{}
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Photos").
		Where("id IN ?", ids).
		Find(&users).Error
	return users, err
}

// BrowsePool returns the users that may appear in someone's feed: not
// banned, located, with at least one photo. Preference and exclusion
// filtering happens in the ranker.
func (r *UserRepository) BrowsePool(ctx context.Context, seekerID uuid.UUID) ([]model.User, error) {
	users := []model.User{}
	err := r.db.WithContext(ctx).
		Preload("Photos").
		Where("id <> ? AND is_banned = ?", seekerID, false).
		Where("latitude IS NOT NULL AND longitude IS NOT NULL").
		Where("EXISTS (SELECT 1 FROM photos WHERE photos.user_id = users.id)").
		Find(&users).Error
	return users, err
}

// UpdateProfile applies the given column updates
func (r *UserRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error
}

// UpdateLocation stores the user's coordinates
func (r *UserRepository) UpdateLocation(ctx context.Context, userID uuid.UUID, lat, lon float64) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{"latitude": lat, "longitude": lon}).Error
}

// AddDevice adds or updates a device token
func (r *UserRepository) AddDevice(ctx context.Context, userID uuid.UUID, token string, deviceType string) error {
	now := time.Now()
	device := model.UserDevice{
		UserID:       userID,
		FCMToken:     token,
		DeviceType:   deviceType,
		LastActiveAt: now,
	}
	// Upsert: on conflict do update
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "fcm_token"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_active_at": now,
			"device_type":    deviceType,
		}),
	}).Create(&device).Error
}

// GetUserDevices gets all devices for a user
func (r *UserRepository) GetUserDevices(ctx context.Context, userID uuid.UUID) ([]model.UserDevice, error) {
	var devices []model.UserDevice
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&devices).Error
	return devices, err
}

// RemoveDevice deletes a token that the push provider rejected
func (r *UserRepository) RemoveDevice(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("fcm_token = ?", token).Delete(&model.UserDevice{}).Error
}
