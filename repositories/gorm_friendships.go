// File: /repositories/gorm_friendships.go
package repositories

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"filmogram-api/models"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxPairRetries bounds how often a pair update is re-run after losing an
// insert race on uk_friendships_pair.
const maxPairRetries = 3

// GormFriendshipStore keeps one friendships row per related pair. Each update
// runs in a transaction holding the pair row lock.
type GormFriendshipStore struct {
	db *gorm.DB
}

func NewGormFriendshipStore(db *gorm.DB) *GormFriendshipStore {
	return &GormFriendshipStore{db: db}
}

func (r *GormFriendshipStore) Update(ctx context.Context, a, b int64, fn FriendshipMutator) (models.Friendship, error) {
	key := models.NewPairKey(a, b)

	var (
		result models.Friendship
		err    error
	)
	for attempt := 1; attempt <= maxPairRetries; attempt++ {
		result, err = r.update(ctx, key, fn)
		if err == nil || !isPairConflict(err) {
			break
		}
	}
	return result, err
}

func (r *GormFriendshipStore) update(ctx context.Context, key models.PairKey, fn FriendshipMutator) (models.Friendship, error) {
	var result models.Friendship

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current := models.NewFriendship(key)
		exists := true
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_low_id = ? AND user_high_id = ?", key.Low, key.High).
			First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			exists = false
			current = models.NewFriendship(key)
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}
		next.ID = current.ID
		next.UserLowID, next.UserHighID = key.Low, key.High
		next.CreatedAt = current.CreatedAt

		switch {
		case exists && next == current:
			result = current
			return nil
		case next.State == models.FriendshipStateNone:
			if exists {
				if err := tx.Delete(&models.Friendship{}, current.ID).Error; err != nil {
					return err
				}
			}
			result = models.NewFriendship(key)
			return nil
		case exists:
			if err := tx.Save(&next).Error; err != nil {
				return err
			}
		default:
			if err := tx.Create(&next).Error; err != nil {
				return err
			}
		}
		result = next
		return nil
	})
	return result, err
}

func (r *GormFriendshipStore) Get(ctx context.Context, a, b int64) (models.Friendship, error) {
	key := models.NewPairKey(a, b)

	var f models.Friendship
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", key.Low, key.High).
		First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewFriendship(key), nil
	}
	if err != nil {
		return f, fmt.Errorf("get friendship %d-%d: %w", key.Low, key.High, err)
	}
	return f, nil
}

func (r *GormFriendshipStore) ListForUser(ctx context.Context, userID int64) ([]models.Friendship, error) {
	out := []models.Friendship{}
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? OR user_high_id = ?", userID, userID).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list friendships of %d: %w", userID, err)
	}

	slices.SortFunc(out, func(x, y models.Friendship) int {
		return cmp.Compare(x.Other(userID), y.Other(userID))
	})
	return out, nil
}

// isPairConflict reports errors caused by two transactions creating the same
// pair concurrently: a unique key violation, or an InnoDB deadlock on the gap
// lock taken by the locking read.
func isPairConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1213
}
