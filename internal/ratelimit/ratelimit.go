// Package ratelimit caps how often a user may perform an action kind.
//
// Every kind is a fixed window of Rule.Window that starts with the first
// admitted request and holds at most Rule.Max requests. The compare and
// increment happens in one atomic step inside the CounterStore, so two
// concurrent requests can never both take the last slot.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/clock"
	"github.com/quocanhngo/spark/internal/config"
)

type Kind string

const (
	KindSwipe   Kind = "swipe"
	KindMessage Kind = "message"
	KindReport  Kind = "report"
	KindBlock   Kind = "block"
)

var ErrUnknownKind = errors.New("ratelimit: no rule configured for action kind")

type (
	// Rule is the window configuration of one action kind.
	Rule struct {
		Max    int64
		Window time.Duration
	}

	// Result represents the outcome of a rate limit decision.
	Result struct {
		Allowed   bool
		Remaining int64 // how many requests are left in the current window
		Limit     int64
		ResetAt   time.Time // when the current window ends
	}

	// Window is what a CounterStore reports after a take attempt.
	Window struct {
		Count   int64
		ResetIn time.Duration
		Taken   bool
	}

	// CounterStore is the storage abstraction the limiter uses.
	CounterStore interface {
		// Take increments the counter at key unless it already reached limit.
		// A missing or expired counter starts a new window of the given length.
		Take(ctx context.Context, key string, limit int64, window time.Duration) (Window, error)
	}
)

// Limiter checks per (user, kind) budgets against a CounterStore.
type Limiter struct {
	store CounterStore
	clock clock.Clock
	rules map[Kind]Rule
}

func New(store CounterStore, clk clock.Clock, rules map[Kind]Rule) *Limiter {
	if clk == nil {
		clk = clock.RealClockProvider()
	}
	return &Limiter{store: store, clock: clk, rules: rules}
}

// RulesFromConfig maps the configured windows to action kinds.
func RulesFromConfig(cfg config.RateLimitConfig) map[Kind]Rule {
	return map[Kind]Rule{
		KindSwipe:   {Max: cfg.Swipe.Max, Window: cfg.Swipe.Window},
		KindMessage: {Max: cfg.Message.Max, Window: cfg.Message.Window},
		KindReport:  {Max: cfg.Report.Max, Window: cfg.Report.Window},
		KindBlock:   {Max: cfg.Block.Max, Window: cfg.Block.Window},
	}
}

// Check consumes one request of kind for userID when the budget allows it.
func (l *Limiter) Check(ctx context.Context, userID uuid.UUID, kind Kind) (Result, error) {
	rule, ok := l.rules[kind]
	if !ok || rule.Max <= 0 || rule.Window <= 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	w, err := l.store.Take(ctx, Key(userID, kind), rule.Max, rule.Window)
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit %s: %w", kind, err)
	}

	return Result{
		Allowed:   w.Taken,
		Remaining: max(rule.Max-w.Count, 0),
		Limit:     rule.Max,
		ResetAt:   l.clock.Now().Add(max(w.ResetIn, 0)),
	}, nil
}

// Rule returns the configured rule for kind.
func (l *Limiter) Rule(kind Kind) (Rule, bool) {
	r, ok := l.rules[kind]
	return r, ok
}

// Key is the counter key of a (user, kind) pair.
func Key(userID uuid.UUID, kind Kind) string {
	return "ratelimit:" + string(kind) + ":" + userID.String()
}
