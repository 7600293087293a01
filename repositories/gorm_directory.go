// File: /repositories/gorm_directory.go
package repositories

import (
	"context"
	"errors"
	"fmt"

	"filmogram-api/models"
	"gorm.io/gorm"
)

// GormDirectory stores users and films in the relational database.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (r *GormDirectory) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = 0
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdateUser overwrites the profile fields of an existing user
func (r *GormDirectory) UpdateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		if err := tx.Select("id").First(&existing, "id = ?", user.ID).Error; err != nil {
			return notFoundOr(err, "user", user.ID)
		}

		return tx.Model(&existing).Updates(map[string]interface{}{
			"email":    user.Email,
			"login":    user.Login,
			"name":     user.Name,
			"birthday": user.Birthday,
		}).Error
	})
}

func (r *GormDirectory) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return &user, nil
}

func (r *GormDirectory) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *GormDirectory) GetUsers(ctx context.Context, ids []int64) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return users, nil
}

func (r *GormDirectory) CreateFilm(ctx context.Context, film *models.Film) error {
	film.ID = 0
	film.LikesCount = 0
	if err := r.db.WithContext(ctx).Create(film).Error; err != nil {
		return fmt.Errorf("create film: %w", err)
	}
	return nil
}

// UpdateFilm overwrites the catalog fields of an existing film. likes_count is
// owned by the like store and is left untouched.
func (r *GormDirectory) UpdateFilm(ctx context.Context, film *models.Film) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Film
		if err := tx.Select("id").First(&existing, "id = ?", film.ID).Error; err != nil {
			return notFoundOr(err, "film", film.ID)
		}

		return tx.Model(&existing).Updates(map[string]interface{}{
			"name":         film.Name,
			"description":  film.Description,
			"release_date": film.ReleaseDate,
			"duration":     film.Duration,
			"genres":       film.Genres,
			"mpa":          film.Mpa,
		}).Error
	})
}

func (r *GormDirectory) GetFilm(ctx context.Context, id int64) (*models.Film, error) {
	var film models.Film
	if err := r.db.WithContext(ctx).First(&film, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "film", id)
	}
	return &film, nil
}

func (r *GormDirectory) ListFilms(ctx context.Context) ([]models.Film, error) {
	films := []models.Film{}
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&films).Error; err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	return films, nil
}

func (r *GormDirectory) GetFilms(ctx context.Context, ids []int64) ([]models.Film, error) {
	films := []models.Film{}
	if len(ids) == 0 {
		return films, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&films).Error; err != nil {
		return nil, fmt.Errorf("get films: %w", err)
	}
	return films, nil
}

func (r *GormDirectory) Exists(ctx context.Context, kind models.EntityKind, id int64) (bool, error) {
	var model interface{}
	switch kind {
	case models.EntityUser:
		model = &models.User{}
	case models.EntityFilm:
		model = &models.Film{}
	default:
		return false, fmt.Errorf("unknown entity kind %q", kind)
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check %s %d: %w", kind, id, err)
	}
	return count > 0, nil
}

func notFoundOr(err error, kind string, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", kind, id, ErrRecordNotFound)
	}
	return fmt.Errorf("load %s %d: %w", kind, id, err)
}
