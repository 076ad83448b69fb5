package presence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

const onlineKey = "presence:online"

// RedisStore lets every server instance agree on presence. Heartbeats live in
// one sorted set scored by the heartbeat time in milliseconds.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, key: onlineKey}
}

func (r *RedisStore) Touch(ctx context.Context, userID uuid.UUID, at time.Time) error {
	err := r.client.ZAdd(ctx, r.key, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: userID.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("presence touch: %w", err)
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context, userID uuid.UUID) error {
	if err := r.client.ZRem(ctx, r.key, userID.String()).Err(); err != nil {
		return fmt.Errorf("presence remove: %w", err)
	}
	return nil
}

func (r *RedisStore) Active(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	from := strconv.FormatInt(since.UnixMilli(), 10)

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, r.key, "-inf", "("+from)
	members := pipe.ZRangeByScore(ctx, r.key, &redis.ZRangeBy{Min: from, Max: "+inf"})
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("presence active: %w", err)
	}

	users := make([]uuid.UUID, 0, len(members.Val()))
	for _, m := range members.Val() {
		id, err := uuid.Parse(m)
		if err != nil {
			continue
		}
		users = append(users, id)
	}
	return users, nil
}

func (r *RedisStore) LastSeen(ctx context.Context, userID uuid.UUID) (time.Time, bool, error) {
	score, err := r.client.ZScore(ctx, r.key, userID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("presence last seen: %w", err)
	}
	return time.UnixMilli(int64(score)), true, nil
}
