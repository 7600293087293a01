package repositories

import (
	"context"
	"slices"
	"sync"
)

// filmLikes is the like set of one film. Count and membership live under the
// same lock, so readers never see one without the other.
type filmLikes struct {
	mu    sync.RWMutex
	users map[int64]struct{}
}

// MemoryLikeStore keeps one like set per film. Mutations of different films
// do not contend with each other.
type MemoryLikeStore struct {
	mu    sync.RWMutex
	films map[int64]*filmLikes
}

func NewMemoryLikeStore() *MemoryLikeStore {
	return &MemoryLikeStore{films: make(map[int64]*filmLikes)}
}

func (s *MemoryLikeStore) ledger(filmID int64, create bool) *filmLikes {
	s.mu.RLock()
	l, ok := s.films[filmID]
	s.mu.RUnlock()
	if ok || !create {
		return l
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok = s.films[filmID]; !ok {
		l = &filmLikes{users: make(map[int64]struct{})}
		s.films[filmID] = l
	}
	return l
}

func (s *MemoryLikeStore) Add(_ context.Context, filmID, userID int64) (bool, int, error) {
	l := s.ledger(filmID, true)
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.users[userID]; ok {
		return false, len(l.users), nil
	}
	l.users[userID] = struct{}{}
	return true, len(l.users), nil
}

func (s *MemoryLikeStore) Remove(_ context.Context, filmID, userID int64) (bool, int, error) {
	l := s.ledger(filmID, false)
	if l == nil {
		return false, 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.users[userID]; !ok {
		return false, len(l.users), nil
	}
	delete(l.users, userID)
	return true, len(l.users), nil
}

func (s *MemoryLikeStore) Count(_ context.Context, filmID int64) (int, error) {
	l := s.ledger(filmID, false)
	if l == nil {
		return 0, nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.users), nil
}

func (s *MemoryLikeStore) Likers(_ context.Context, filmID int64) ([]int64, error) {
	l := s.ledger(filmID, false)
	if l == nil {
		return []int64{}, nil
	}
	l.mu.RLock()
	users := make([]int64, 0, len(l.users))
	for id := range l.users {
		users = append(users, id)
	}
	l.mu.RUnlock()

	slices.Sort(users)
	return users, nil
}

func (s *MemoryLikeStore) Counts(ctx context.Context, filmIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(filmIDs))
	for _, id := range filmIDs {
		n, err := s.Count(ctx, id)
		if err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, nil
}
