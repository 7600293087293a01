// File: /services/like_service.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"filmogram-api/metrics"
	"filmogram-api/models"
	"filmogram-api/repositories"
)

// LikeLedger records which users like which films. A like is a set member:
// liking twice or removing an absent like are successful no-ops.
type LikeLedger struct {
	dir    repositories.Directory
	store  repositories.LikeStore
	logger *slog.Logger

	// generation advances after every change that can reorder the ranking.
	generation atomic.Uint64
}

func NewLikeLedger(dir repositories.Directory, store repositories.LikeStore, logger *slog.Logger) *LikeLedger {
	return &LikeLedger{
		dir:    dir,
		store:  store,
		logger: loggerOrDefault(logger).With("component", "like_ledger"),
	}
}

// AddLike records that userID likes filmID and returns the film's like count.
func (l *LikeLedger) AddLike(ctx context.Context, filmID, userID int64) (int, error) {
	const op = "AddLike"
	if err := requireExists(ctx, l.dir, "like", op, models.EntityFilm, filmID); err != nil {
		return 0, err
	}
	if err := requireExists(ctx, l.dir, "like", op, models.EntityUser, userID); err != nil {
		return 0, err
	}

	added, count, err := l.store.Add(ctx, filmID, userID)
	if err != nil {
		return 0, translate(err, "like", op, models.EntityFilm, filmID)
	}

	if added {
		l.advance()
		metrics.LikeMutations.WithLabelValues("add", "changed").Inc()
		l.logger.Info("like added", "film_id", filmID, "user_id", userID, "likes", count)
	} else {
		metrics.LikeMutations.WithLabelValues("add", "noop").Inc()
		l.logger.Debug("like already recorded", "film_id", filmID, "user_id", userID, "likes", count)
	}
	return count, nil
}

// RemoveLike drops userID's like of filmID and returns the film's like count
// after the call. It reports false when there was nothing to remove; only an
// unknown film is an error.
func (l *LikeLedger) RemoveLike(ctx context.Context, filmID, userID int64) (bool, int, error) {
	const op = "RemoveLike"
	if err := requireExists(ctx, l.dir, "like", op, models.EntityFilm, filmID); err != nil {
		return false, 0, err
	}

	removed, count, err := l.store.Remove(ctx, filmID, userID)
	if err != nil {
		return false, 0, translate(err, "like", op, models.EntityFilm, filmID)
	}

	if removed {
		l.advance()
		metrics.LikeMutations.WithLabelValues("remove", "changed").Inc()
		l.logger.Info("like removed", "film_id", filmID, "user_id", userID, "likes", count)
	} else {
		metrics.LikeMutations.WithLabelValues("remove", "noop").Inc()
		l.logger.Debug("like not recorded, nothing to remove", "film_id", filmID, "user_id", userID)
	}
	return removed, count, nil
}

// Generation returns a counter that grows whenever a like is added or removed
// or a film is created or updated.
func (l *LikeLedger) Generation() uint64 {
	return l.generation.Load()
}

func (l *LikeLedger) advance() {
	l.generation.Add(1)
}

// CountLikes returns how many distinct users like filmID. Unknown films count
// zero; only store failures are reported.
func (l *LikeLedger) CountLikes(ctx context.Context, filmID int64) (int, error) {
	n, err := l.store.Count(ctx, filmID)
	if err != nil {
		return 0, fmt.Errorf("like.CountLikes: %w", err)
	}
	return n, nil
}

// LikedBy returns the ids of the users liking filmID in ascending order.
func (l *LikeLedger) LikedBy(ctx context.Context, filmID int64) ([]int64, error) {
	const op = "LikedBy"
	if err := requireExists(ctx, l.dir, "like", op, models.EntityFilm, filmID); err != nil {
		return nil, err
	}

	users, err := l.store.Likers(ctx, filmID)
	if err != nil {
		return nil, translate(err, "like", op, models.EntityFilm, filmID)
	}
	return users, nil
}

// Counts returns the like count of each film in filmIDs.
func (l *LikeLedger) Counts(ctx context.Context, filmIDs []int64) (map[int64]int, error) {
	counts, err := l.store.Counts(ctx, filmIDs)
	if err != nil {
		return nil, fmt.Errorf("like.Counts: %w", err)
	}
	return counts, nil
}
