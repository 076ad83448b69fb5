package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/quocanhngo/spark/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_SeversMatchAndHistory(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.blockService()
	chat := env.chatService()
	ctx := context.Background()
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")
	carol := env.newUser(t, "Carol")
	withBob := env.match(t, alice, bob)
	withCarol := env.match(t, alice, carol)

	_, err := chat.SendMessage(ctx, bob.ID, withBob.ID, "hey")
	require.NoError(t, err)
	_, err = chat.SendMessage(ctx, carol.ID, withCarol.ID, "hey")
	require.NoError(t, err)

	block, err := svc.Block(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, block.BlockerID)

	_, err = env.matches.FindByID(ctx, withBob.ID)
	assert.True(t, isNotFound(err))
	var left int64
	require.NoError(t, env.db.Model(&model.Message{}).Where("match_id = ?", withBob.ID).Count(&left).Error)
	assert.Zero(t, left)

	// unrelated match survives
	_, err = env.matches.FindByID(ctx, withCarol.ID)
	assert.NoError(t, err)

	// the blocked side lost access too
	_, err = chat.SendMessage(ctx, bob.ID, withBob.ID, "still there?")
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestBlock_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.blockService()
	ctx := context.Background()
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")

	_, err := svc.Block(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSelfAction)

	_, err = svc.Block(ctx, alice.ID, uuid.New())
	assert.ErrorIs(t, err, ErrTargetNotFound)

	_, err = svc.Block(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Block(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrAlreadyBlocked)

	// the other direction is a separate block
	_, err = svc.Block(ctx, bob.ID, alice.ID)
	assert.NoError(t, err)
}

func TestUnblock(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.blockService()
	ctx := context.Background()
	alice := env.newUser(t, "Alice")
	bob := env.newUser(t, "Bob")
	carol := env.newUser(t, "Carol")

	_, err := svc.Block(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Block(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	blocked, err := svc.ListBlocked(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, blocked, 2)

	require.NoError(t, svc.Unblock(ctx, alice.ID, bob.ID))
	assert.ErrorIs(t, svc.Unblock(ctx, alice.ID, bob.ID), ErrNotBlocked)
	// only the blocker can lift a block
	assert.ErrorIs(t, svc.Unblock(ctx, carol.ID, alice.ID), ErrNotBlocked)

	blocked, err = svc.ListBlocked(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, carol.ID, blocked[0].BlockedID)
}

func TestBlock_BannedBlockerRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := env.blockService()
	ctx := context.Background()
	alice := env.newUser(t, "Alice")
	outcast := env.newUser(t, "Outcast", banned())

	_, err := svc.Block(ctx, outcast.ID, alice.ID)
	assert.ErrorIs(t, err, ErrBanned)

	exists, err := env.blocks.ExistsEither(ctx, alice.ID, outcast.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}
