package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/messenger"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/quocanhngo/spark/internal/ratelimit"
	"github.com/quocanhngo/spark/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSwipe_MutualRightCreatesMatch(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.swipeService()
	ctx := context.Background()
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob", gender(model.GenderMale))

	first, err := svc.Swipe(ctx, alice.ID, bob.ID, model.DirectionRight)
	require.NoError(t, err)
	assert.False(t, first.MatchCreated)
	assert.Nil(t, first.MatchID)

	second, err := svc.Swipe(ctx, bob.ID, alice.ID, model.DirectionRight)
	require.NoError(t, err)
	require.True(t, second.MatchCreated)
	require.NotNil(t, second.MatchID)

	match, err := env.matches.FindByPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, *second.MatchID, match.ID)
	a, b := model.CanonicalPair(alice.ID, bob.ID)
	assert.Equal(t, a, match.UserAID)
	assert.Equal(t, b, match.UserBID)

	events := env.topic.ofType(model.WSEventMatchNew)
	require.Len(t, events, 2)
	topics := []string{events[0].topic, events[1].topic}
	assert.ElementsMatch(t, []string{messenger.UserTopic(alice.ID), messenger.UserTopic(bob.ID)}, topics)
	for _, e := range events {
		payload := e.event.Payload.(model.MatchEvent)
		assert.Equal(t, match.ID, payload.MatchID)
		if e.topic == messenger.UserTopic(alice.ID) {
			assert.Equal(t, bob.ID, payload.Partner.ID)
		} else {
			assert.Equal(t, alice.ID, payload.Partner.ID)
		}
	}
	assert.Equal(t, []uuid.UUID{match.ID}, env.notifier.matches)
}

func TestSwipe_SuperCountsAsPositive(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.swipeService()
	ctx := context.Background()
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")

	_, err := svc.Swipe(ctx, alice.ID, bob.ID, model.DirectionSuper)
	require.NoError(t, err)
	resp, err := svc.Swipe(ctx, bob.ID, alice.ID, model.DirectionRight)
	require.NoError(t, err)
	assert.True(t, resp.MatchCreated)
}

func TestSwipe_LeftNeverMatches(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.swipeService()
	ctx := context.Background()
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")

	_, err := svc.Swipe(ctx, alice.ID, bob.ID, model.DirectionLeft)
	require.NoError(t, err)
	resp, err := svc.Swipe(ctx, bob.ID, alice.ID, model.DirectionRight)
	require.NoError(t, err)

	assert.False(t, resp.MatchCreated)
	assert.Zero(t, env.countMatches(t))
	assert.Empty(t, env.topic.ofType(model.WSEventMatchNew))
}

func TestSwipe_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.swipeService()
	ctx := context.Background()
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")
	outcast := env.newUser(t, "Outcast", banned())

	tests := []struct {
		name      string
		target    uuid.UUID
		direction model.Direction
		wantErr   error
	}{
		{"invalid direction", bob.ID, model.Direction("UP"), ErrInvalidDirection},
		{"self", alice.ID, model.DirectionRight, ErrSelfAction},
		{"unknown target", uuid.New(), model.DirectionRight, ErrTargetNotFound},
		{"banned target", outcast.ID, model.DirectionRight, ErrTargetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Swipe(ctx, alice.ID, tt.target, tt.direction)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSwipe_DuplicateKeepsFirstDecision(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.swipeService()
	ctx := context.Background()
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")

	_, err := svc.Swipe(ctx, alice.ID, bob.ID, model.DirectionLeft)
	require.NoError(t, err)
	_, err = svc.Swipe(ctx, alice.ID, bob.ID, model.DirectionRight)
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	stored, err := env.swipes.Find(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DirectionLeft, stored.Direction)
}

func TestSwipe_BlockedEitherWayLooksMissing(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.swipeService()
	ctx := context.Background()
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")
	carol := env.newUser(t, "Carol")

	_, err := env.blocks.Create(ctx, &model.Block{BlockerID: alice.ID, BlockedID: bob.ID})
	require.NoError(t, err)
	_, err = env.blocks.Create(ctx, &model.Block{BlockerID: carol.ID, BlockedID: alice.ID})
	require.NoError(t, err)

	_, err = svc.Swipe(ctx, alice.ID, bob.ID, model.DirectionRight)
	assert.ErrorIs(t, err, ErrTargetNotFound)
	_, err = svc.Swipe(ctx, alice.ID, carol.ID, model.DirectionRight)
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestSwipe_RateLimit(t *testing.T) {
	env := newTestEnv(t, map[ratelimit.Kind]ratelimit.Rule{
		ratelimit.KindSwipe: {Max: 2, Window: time.Hour},
	})
	svc := env.swipeService()
	ctx := context.Background()
	alice := env.newUser(t, "Alice")
	targets := []*model.User{env.newUser(t, "B"), env.newUser(t, "C"), env.newUser(t, "D")}

	for _, target := range targets[:2] {
		_, err := svc.Swipe(ctx, alice.ID, target.ID, model.DirectionLeft)
		require.NoError(t, err)
	}

	_, err := svc.Swipe(ctx, alice.ID, targets[2].ID, model.DirectionLeft)
	var limited *RateLimitedError
	require.True(t, errors.As(err, &limited))
	assert.Equal(t, ratelimit.KindSwipe, limited.Kind)
	assert.Zero(t, limited.Remaining)
	assert.Equal(t, time.Hour, limited.RetryAfter(env.clock.Now()))

	// self is rejected before the limiter is consulted
	_, err = svc.Swipe(ctx, alice.ID, alice.ID, model.DirectionLeft)
	assert.ErrorIs(t, err, ErrSelfAction)

	// the limiter is consulted before the target is looked up
	_, err = svc.Swipe(ctx, alice.ID, uuid.New(), model.DirectionLeft)
	assert.True(t, errors.As(err, &limited))

	env.clock.Advance(time.Hour)
	_, err = svc.Swipe(ctx, alice.ID, targets[2].ID, model.DirectionLeft)
	assert.NoError(t, err)
}

func TestSwipe_ConcurrentMutualSwipesConverge(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.swipeService()
	ctx := context.Background()

	const pairs = 10
	for i := 0; i < pairs; i++ {
		a := env.newUser(t, "A")
		b := env.newUser(t, "B")

		var (
			wg        sync.WaitGroup
			responses [2]*model.SwipeResponse
			errs      [2]error
		)
		wg.Go(func() { responses[0], errs[0] = svc.Swipe(ctx, a.ID, b.ID, model.DirectionRight) })
		wg.Go(func() { responses[1], errs[1] = svc.Swipe(ctx, b.ID, a.ID, model.DirectionRight) })
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		n, err := env.matches.CountByPair(ctx, a.ID, b.ID)
		require.NoError(t, err)
		require.Equal(t, int64(1), n)

		match, err := env.matches.FindByPair(ctx, a.ID, b.ID)
		require.NoError(t, err)
		created := 0
		for _, r := range responses {
			if r.MatchCreated {
				created++
				assert.Equal(t, match.ID, *r.MatchID)
			}
		}
		assert.GreaterOrEqual(t, created, 1)
	}

	assert.Len(t, env.notifier.matches, pairs)
	assert.Len(t, env.topic.ofType(model.WSEventMatchNew), 2*pairs)
}

func TestSwipe_BlockAfterChecksLeavesNoMatch(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.swipeService()
	ctx := context.Background()
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")

	_, err := svc.Swipe(ctx, alice.ID, bob.ID, model.DirectionRight)
	require.NoError(t, err)

	// alice blocks bob right after his swipe looked for blocks
	var blockErr error
	blocked := false
	require.NoError(t, env.db.Callback().Query().After("gorm:query").Register("test:block_after_check", func(tx *gorm.DB) {
		if blocked || tx.Statement.Table != "blocks" {
			return
		}
		blocked = true
		_, blockErr = env.blockService().Block(ctx, alice.ID, bob.ID)
	}))

	resp, err := svc.Swipe(ctx, bob.ID, alice.ID, model.DirectionRight)
	require.NoError(t, err)
	require.True(t, blocked)
	require.NoError(t, blockErr)
	assert.False(t, resp.MatchCreated)
	assert.Nil(t, resp.MatchID)

	exists, err := env.blocks.ExistsEither(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Zero(t, env.countMatches(t))
	assert.Empty(t, env.topic.ofType(model.WSEventMatchNew))
}

func TestSwipe_BannedSwiperCannotMatch(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.swipeService()
	ctx := context.Background()
	bob := env.newUser(t, "Bob")
	mallory := env.newUser(t, "Mallory")

	_, err := svc.Swipe(ctx, bob.ID, mallory.ID, model.DirectionRight)
	require.NoError(t, err)
	_, err = env.reports.BanUser(ctx, mallory.ID, epoch)
	require.NoError(t, err)

	resp, err := svc.Swipe(ctx, mallory.ID, bob.ID, model.DirectionRight)
	assert.ErrorIs(t, err, ErrBanned)
	assert.Nil(t, resp)
	assert.Zero(t, env.countMatches(t))

	_, err = env.swipes.Find(ctx, mallory.ID, bob.ID)
	assert.True(t, isNotFound(err))
}

func TestCreateOrGet_RefusesBlockedOrBannedPair(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")
	outcast := env.newUser(t, "Outcast", banned())

	_, _, err := env.matches.CreateOrGet(ctx, alice.ID, outcast.ID)
	assert.ErrorIs(t, err, repository.ErrPairUnavailable)

	_, err = env.blocks.Create(ctx, &model.Block{BlockerID: bob.ID, BlockedID: alice.ID})
	require.NoError(t, err)
	_, _, err = env.matches.CreateOrGet(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, repository.ErrPairUnavailable)

	_, _, err = env.matches.CreateOrGet(ctx, alice.ID, uuid.New())
	assert.ErrorIs(t, err, repository.ErrPairUnavailable)
	assert.Zero(t, env.countMatches(t))
}
