package repositories

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"filmogram-api/models"
)

const friendshipLockStripes = 64

// MemoryFriendshipStore keeps pair relationships in a map with a per-user index.
// Updates of the same pair serialize on a striped lock; the map lock is only
// held while reading the current value and while applying the result.
type MemoryFriendshipStore struct {
	stripes [friendshipLockStripes]sync.Mutex

	mu     sync.RWMutex
	pairs  map[models.PairKey]models.Friendship
	byUser map[int64]map[models.PairKey]struct{}

	now func() time.Time
}

func NewMemoryFriendshipStore() *MemoryFriendshipStore {
	return &MemoryFriendshipStore{
		pairs:  make(map[models.PairKey]models.Friendship),
		byUser: make(map[int64]map[models.PairKey]struct{}),
		now:    time.Now,
	}
}

func (s *MemoryFriendshipStore) stripe(key models.PairKey) *sync.Mutex {
	h := uint64(key.Low)*1_000_003 ^ uint64(key.High)
	return &s.stripes[h%friendshipLockStripes]
}

func (s *MemoryFriendshipStore) Update(_ context.Context, a, b int64, fn FriendshipMutator) (models.Friendship, error) {
	key := models.NewPairKey(a, b)
	lock := s.stripe(key)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	current, exists := s.pairs[key]
	s.mu.RUnlock()
	if !exists {
		current = models.NewFriendship(key)
	}

	next, err := fn(current)
	if err != nil {
		return current, err
	}
	next.UserLowID, next.UserHighID = key.Low, key.High
	if exists && next == current {
		return current, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if next.State == models.FriendshipStateNone {
		if exists {
			delete(s.pairs, key)
			s.unindex(key)
		}
		return models.NewFriendship(key), nil
	}

	now := s.now()
	if !exists {
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	s.pairs[key] = next
	s.index(key)
	return next, nil
}

func (s *MemoryFriendshipStore) Get(_ context.Context, a, b int64) (models.Friendship, error) {
	key := models.NewPairKey(a, b)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if f, ok := s.pairs[key]; ok {
		return f, nil
	}
	return models.NewFriendship(key), nil
}

func (s *MemoryFriendshipStore) ListForUser(_ context.Context, userID int64) ([]models.Friendship, error) {
	s.mu.RLock()
	keys := s.byUser[userID]
	out := make([]models.Friendship, 0, len(keys))
	for key := range keys {
		out = append(out, s.pairs[key])
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(x, y models.Friendship) int {
		return cmp.Compare(x.Other(userID), y.Other(userID))
	})
	return out, nil
}

// index and unindex must be called with mu held for writing.
func (s *MemoryFriendshipStore) index(key models.PairKey) {
	for _, id := range [2]int64{key.Low, key.High} {
		set, ok := s.byUser[id]
		if !ok {
			set = make(map[models.PairKey]struct{})
			s.byUser[id] = set
		}
		set[key] = struct{}{}
	}
}

func (s *MemoryFriendshipStore) unindex(key models.PairKey) {
	for _, id := range [2]int64{key.Low, key.High} {
		if set, ok := s.byUser[id]; ok {
			delete(set, key)
			if len(set) == 0 {
				delete(s.byUser, id)
			}
		}
	}
}
