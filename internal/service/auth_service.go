package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quocanhngo/spark/internal/clock"
	"github.com/quocanhngo/spark/internal/geo"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/repository"
	"github.com/quocanhngo/spark/pkg/auth"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	birthdateLayout = "2006-01-02"
	minimumAge      = 18
	blacklistPrefix = "blacklist:"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo   *repository.UserRepository
	prefRepo   *repository.PreferenceRepository
	jwtManager *auth.JWTManager
	rdb        *redis.Client
	clock      clock.Clock
}

func NewAuthService(
	userRepo *repository.UserRepository,
	prefRepo *repository.PreferenceRepository,
	jwtManager *auth.JWTManager,
	rdb *redis.Client,
	clk clock.Clock,
) *AuthService {
	if clk == nil {
		clk = clock.RealClockProvider()
	}
	return &AuthService{
		userRepo:   userRepo,
		prefRepo:   prefRepo,
		jwtManager: jwtManager,
		rdb:        rdb,
		clock:      clk,
	}
}

// ==================== Register ====================

// Register creates an account with default preferences and signs it in
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.LoginResponse, error) {
	now := s.clock.Now()
	birthdate, err := time.Parse(birthdateLayout, req.Birthdate)
	if err != nil || geo.AgeYears(birthdate, now) < minimumAge {
		return nil, ErrInvalidBirthdate
	}
	if !req.Gender.Valid() {
		return nil, ErrInvalidGender
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !isNotFound(err) {
		return nil, fmt.Errorf("find user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Password:  string(hashedPassword),
		Role:      model.RoleUser,
		Birthdate: &birthdate,
		Gender:    req.Gender,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if _, err := s.prefRepo.FindOrCreateDefault(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}

	return s.issue(user, now)
}

// ==================== Login ====================

// Login authenticates a user and returns a JWT token
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsBanned {
		return nil, ErrBanned
	}

	return s.issue(user, s.clock.Now())
}

// Logout revokes the token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return err
	}

	expiresIn := s.jwtManager.ExpiresIn(claims)
	if expiresIn <= 0 {
		return nil
	}

	return s.rdb.Set(ctx, blacklistPrefix+tokenString, "revoked", expiresIn).Err()
}

// IsRevoked reports whether the token was logged out
func (s *AuthService) IsRevoked(ctx context.Context, tokenString string) (bool, error) {
	n, err := s.rdb.Exists(ctx, blacklistPrefix+tokenString).Result()
	return n > 0, err
}

func (s *AuthService) issue(user *model.User, now time.Time) (*model.LoginResponse, error) {
	token, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Name, string(user.Role))
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	return &model.LoginResponse{
		Token: token,
		User:  user.ToResponse(ageOf(user, now)),
	}, nil
}
