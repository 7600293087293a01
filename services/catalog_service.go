// File: /services/catalog_service.go
package services

import (
	"context"
	"log/slog"

	"filmogram-api/models"
	"filmogram-api/repositories"
)

// CatalogService is the CRUD surface over the entity directory.
type CatalogService struct {
	dir    repositories.Directory
	ledger *LikeLedger
	logger *slog.Logger
}

func NewCatalogService(dir repositories.Directory, ledger *LikeLedger, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		dir:    dir,
		ledger: ledger,
		logger: loggerOrDefault(logger).With("component", "catalog"),
	}
}

func (s *CatalogService) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.dir.CreateUser(ctx, user); err != nil {
		return translate(err, "user", "Create", models.EntityUser, user.ID)
	}
	s.logger.Info("user created", "user_id", user.ID, "login", user.Login)
	return nil
}

func (s *CatalogService) UpdateUser(ctx context.Context, user *models.User) error {
	if err := s.dir.UpdateUser(ctx, user); err != nil {
		return translate(err, "user", "Update", models.EntityUser, user.ID)
	}
	s.logger.Info("user updated", "user_id", user.ID)
	return nil
}

func (s *CatalogService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.dir.GetUser(ctx, id)
	if err != nil {
		return nil, translate(err, "user", "Get", models.EntityUser, id)
	}
	return user, nil
}

func (s *CatalogService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.dir.ListUsers(ctx)
	if err != nil {
		return nil, translate(err, "user", "List", models.EntityUser, 0)
	}
	return users, nil
}

// GetUsers returns the known users among ids, ordered by id.
func (s *CatalogService) GetUsers(ctx context.Context, ids []int64) ([]models.User, error) {
	users, err := s.dir.GetUsers(ctx, ids)
	if err != nil {
		return nil, translate(err, "user", "GetMany", models.EntityUser, 0)
	}
	return users, nil
}

func (s *CatalogService) CreateFilm(ctx context.Context, film *models.Film) error {
	if err := s.dir.CreateFilm(ctx, film); err != nil {
		return translate(err, "film", "Create", models.EntityFilm, film.ID)
	}
	film.LikesCount = 0
	s.ledger.advance()
	s.logger.Info("film created", "film_id", film.ID, "name", film.Name)
	return nil
}

func (s *CatalogService) UpdateFilm(ctx context.Context, film *models.Film) error {
	if err := s.dir.UpdateFilm(ctx, film); err != nil {
		return translate(err, "film", "Update", models.EntityFilm, film.ID)
	}
	s.ledger.advance()
	count, err := s.ledger.CountLikes(ctx, film.ID)
	if err != nil {
		return err
	}
	film.LikesCount = count
	s.logger.Info("film updated", "film_id", film.ID)
	return nil
}

// GetFilm returns the film with its current like count.
func (s *CatalogService) GetFilm(ctx context.Context, id int64) (*models.Film, error) {
	film, err := s.dir.GetFilm(ctx, id)
	if err != nil {
		return nil, translate(err, "film", "Get", models.EntityFilm, id)
	}
	count, err := s.ledger.CountLikes(ctx, id)
	if err != nil {
		return nil, err
	}
	film.LikesCount = count
	return film, nil
}

// ListFilms returns every film ordered by id with like counts filled in.
func (s *CatalogService) ListFilms(ctx context.Context) ([]models.Film, error) {
	films, err := s.dir.ListFilms(ctx)
	if err != nil {
		return nil, translate(err, "film", "List", models.EntityFilm, 0)
	}
	counts, err := s.ledger.Counts(ctx, filmIDs(films))
	if err != nil {
		return nil, err
	}
	for i := range films {
		films[i].LikesCount = counts[films[i].ID]
	}
	return films, nil
}
