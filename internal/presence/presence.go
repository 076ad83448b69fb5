// Package presence answers "who is online now" from client heartbeats.
package presence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/clock"
	"github.com/quocanhngo/spark/internal/logger"
)

// DefaultTTL is how long a heartbeat keeps a user online.
const DefaultTTL = 5 * time.Minute

// Store persists the last heartbeat per user.
type Store interface {
	Touch(ctx context.Context, userID uuid.UUID, at time.Time) error
	Remove(ctx context.Context, userID uuid.UUID) error
	// Active returns users seen at or after since and drops everyone older.
	Active(ctx context.Context, since time.Time) ([]uuid.UUID, error)
	LastSeen(ctx context.Context, userID uuid.UUID) (time.Time, bool, error)
}

// Tracker is best-effort presence: a user is online while their last
// heartbeat is younger than the TTL and they have not disconnected.
type Tracker struct {
	store Store
	clock clock.Clock
	ttl   time.Duration
}

func NewTracker(store Store, clk clock.Clock, ttl time.Duration) *Tracker {
	if clk == nil {
		clk = clock.RealClockProvider()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tracker{store: store, clock: clk, ttl: ttl}
}

func (t *Tracker) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	return t.store.Touch(ctx, userID, t.clock.Now())
}

func (t *Tracker) Disconnect(ctx context.Context, userID uuid.UUID) error {
	return t.store.Remove(ctx, userID)
}

func (t *Tracker) OnlineUsers(ctx context.Context) ([]uuid.UUID, error) {
	return t.store.Active(ctx, t.cutoff())
}

func (t *Tracker) OnlineCount(ctx context.Context) (int, error) {
	users, err := t.OnlineUsers(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

func (t *Tracker) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	seen, ok, err := t.store.LastSeen(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	return !seen.Before(t.cutoff()), nil
}

// Run evicts stale records every interval until ctx is done.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := t.store.Active(ctx, t.cutoff()); err != nil {
				logger.Warn("presence sweep failed", "error", err)
			}
		}
	}
}

func (t *Tracker) cutoff() time.Time {
	return t.clock.Now().Add(-t.ttl)
}
