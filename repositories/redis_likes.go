package repositories

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisLikeStore keeps one Redis set per film. SADD/SREM and SCARD run inside
// MULTI so the returned count belongs to the same state as the mutation.
type RedisLikeStore struct {
	client *redis.Client
	prefix string
}

// NewRedisLikeStore creates a store whose keys are "<prefix>film:<id>:likes".
func NewRedisLikeStore(client *redis.Client, prefix string) *RedisLikeStore {
	return &RedisLikeStore{client: client, prefix: prefix}
}

func (s *RedisLikeStore) key(filmID int64) string {
	return fmt.Sprintf("%sfilm:%d:likes", s.prefix, filmID)
}

func (s *RedisLikeStore) Add(ctx context.Context, filmID, userID int64) (bool, int, error) {
	var (
		added *redis.IntCmd
		card  *redis.IntCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.SAdd(ctx, s.key(filmID), userID)
		card = pipe.SCard(ctx, s.key(filmID))
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("add like film=%d user=%d: %w", filmID, userID, err)
	}
	return added.Val() == 1, int(card.Val()), nil
}

func (s *RedisLikeStore) Remove(ctx context.Context, filmID, userID int64) (bool, int, error) {
	var (
		removed *redis.IntCmd
		card    *redis.IntCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.SRem(ctx, s.key(filmID), userID)
		card = pipe.SCard(ctx, s.key(filmID))
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("remove like film=%d user=%d: %w", filmID, userID, err)
	}
	return removed.Val() == 1, int(card.Val()), nil
}

func (s *RedisLikeStore) Count(ctx context.Context, filmID int64) (int, error) {
	n, err := s.client.SCard(ctx, s.key(filmID)).Result()
	if err != nil {
		return 0, fmt.Errorf("count likes film=%d: %w", filmID, err)
	}
	return int(n), nil
}

func (s *RedisLikeStore) Likers(ctx context.Context, filmID int64) ([]int64, error) {
	members, err := s.client.SMembers(ctx, s.key(filmID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list likers film=%d: %w", filmID, err)
	}

	users := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("film %d: malformed liker %q: %w", filmID, m, err)
		}
		users = append(users, id)
	}
	slices.Sort(users)
	return users, nil
}

func (s *RedisLikeStore) Counts(ctx context.Context, filmIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(filmIDs))
	if len(filmIDs) == 0 {
		return counts, nil
	}

	cmds := make([]*redis.IntCmd, len(filmIDs))
	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range filmIDs {
			cmds[i] = pipe.SCard(ctx, s.key(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	for i, id := range filmIDs {
		counts[id] = int(cmds[i].Val())
	}
	return counts, nil
}
