// File: /repositories/gorm_likes.go
package repositories

import (
	"context"
	"fmt"

	"filmogram-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLikeStore keeps likes in film_likes and mirrors their number in
// films.likes_count. Both are written in one transaction while the film row
// is locked, so the counter never drifts from the set.
type GormLikeStore struct {
	db *gorm.DB
}

func NewGormLikeStore(db *gorm.DB) *GormLikeStore {
	return &GormLikeStore{db: db}
}

func (r *GormLikeStore) lockFilm(tx *gorm.DB, filmID int64) (*models.Film, error) {
	var film models.Film
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "likes_count").
		First(&film, "id = ?", filmID).Error
	if err != nil {
		return nil, notFoundOr(err, "film", filmID)
	}
	return &film, nil
}

func (r *GormLikeStore) hasLike(tx *gorm.DB, filmID, userID int64) (bool, error) {
	var n int64
	err := tx.Model(&models.FilmLike{}).
		Where("film_id = ? AND user_id = ?", filmID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *GormLikeStore) Add(ctx context.Context, filmID, userID int64) (bool, int, error) {
	var (
		added bool
		count int
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		film, err := r.lockFilm(tx, filmID)
		if err != nil {
			return err
		}
		count = film.LikesCount

		exists, err := r.hasLike(tx, filmID, userID)
		if err != nil || exists {
			return err
		}

		if err := tx.Create(&models.FilmLike{FilmID: filmID, UserID: userID}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Film{}).Where("id = ?", filmID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error; err != nil {
			return err
		}
		added = true
		count++
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("add like film=%d user=%d: %w", filmID, userID, err)
	}
	return added, count, nil
}

func (r *GormLikeStore) Remove(ctx context.Context, filmID, userID int64) (bool, int, error) {
	var (
		removed bool
		count   int
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		film, err := r.lockFilm(tx, filmID)
		if err != nil {
			return err
		}
		count = film.LikesCount

		res := tx.Where("film_id = ? AND user_id = ?", filmID, userID).Delete(&models.FilmLike{})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		if err := tx.Model(&models.Film{}).Where("id = ?", filmID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - ?", 1)).Error; err != nil {
			return err
		}
		removed = true
		count--
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("remove like film=%d user=%d: %w", filmID, userID, err)
	}
	return removed, count, nil
}

func (r *GormLikeStore) Count(ctx context.Context, filmID int64) (int, error) {
	var counts []int
	err := r.db.WithContext(ctx).Model(&models.Film{}).
		Where("id = ?", filmID).
		Pluck("likes_count", &counts).Error
	if err != nil {
		return 0, fmt.Errorf("count likes film=%d: %w", filmID, err)
	}
	if len(counts) == 0 {
		return 0, nil
	}
	return counts[0], nil
}

func (r *GormLikeStore) Likers(ctx context.Context, filmID int64) ([]int64, error) {
	users := []int64{}
	err := r.db.WithContext(ctx).Model(&models.FilmLike{}).
		Where("film_id = ?", filmID).
		Order("user_id ASC").
		Pluck("user_id", &users).Error
	if err != nil {
		return nil, fmt.Errorf("list likers film=%d: %w", filmID, err)
	}
	return users, nil
}

func (r *GormLikeStore) Counts(ctx context.Context, filmIDs []int64) (map[int64]int, error) {
	counts := make(map[int64]int, len(filmIDs))
	if len(filmIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ID         int64
		LikesCount int
	}
	err := r.db.WithContext(ctx).Model(&models.Film{}).
		Select("id", "likes_count").
		Where("id IN ?", filmIDs).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	for _, id := range filmIDs {
		counts[id] = 0
	}
	for _, row := range rows {
		counts[row.ID] = row.LikesCount
	}
	return counts, nil
}
