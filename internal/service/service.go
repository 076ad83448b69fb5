package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/geo"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/ratelimit"
	"github.com/quocanhngo/spark/internal/repository"
	"gorm.io/gorm"
)

// Notifier takes notification work off the request path
type Notifier interface {
	NotifyMatch(match *model.Match, a, b *model.User)
	NotifyMessage(msg *model.Message, recipientID uuid.UUID, senderName string)
}

type nopNotifier struct{}

func (nopNotifier) NotifyMatch(*model.Match, *model.User, *model.User) {}
func (nopNotifier) NotifyMessage(*model.Message, uuid.UUID, string) {}

// allow consumes one unit of kind for userID or returns *RateLimitedError
func allow(ctx context.Context, limiter *ratelimit.Limiter, userID uuid.UUID, kind ratelimit.Kind) error {
	res, err := limiter.Check(ctx, userID, kind)
	if err != nil {
		return err
	}
	if !res.Allowed {
		return &RateLimitedError{Kind: kind, Remaining: res.Remaining, ResetAt: res.ResetAt}
	}
	return nil
}

// activeUser loads the acting user. A ban takes effect here even while the
// user's token is still valid.
func activeUser(ctx context.Context, users *repository.UserRepository, userID uuid.UUID) (*model.User, error) {
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.IsBanned {
		return nil, ErrBanned
	}
	return user, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ageOf returns the user's age at now, 0 when the birthdate is unknown
func ageOf(u *model.User, now time.Time) int {
	if u.Birthdate == nil {
		return 0
	}
	return geo.AgeYears(*u.Birthdate, now)
}

func partnerOf(u *model.User, now time.Time) model.MatchPartner {
	p := model.MatchPartner{
		ID:   u.ID,
		Name: u.Name,
		Age:  ageOf(u, now),
		City: u.City,
	}
	if photo := u.PrimaryPhoto(); photo != nil {
		p.PrimaryPhotoURL = photo.URL
	}
	return p
}
