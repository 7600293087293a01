// File: /repositories/repository.go
package repositories

import (
	"context"
	"errors"

	"filmogram-api/models"
)

// ErrRecordNotFound is returned by directory lookups for unknown ids.
var ErrRecordNotFound = errors.New("record not found")

// Directory stores user and film records keyed by identifier.
type Directory interface {
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// GetUsers returns the known users among ids, ordered by id.
	GetUsers(ctx context.Context, ids []int64) ([]models.User, error)

	CreateFilm(ctx context.Context, film *models.Film) error
	UpdateFilm(ctx context.Context, film *models.Film) error
	GetFilm(ctx context.Context, id int64) (*models.Film, error)
	ListFilms(ctx context.Context) ([]models.Film, error)
	// GetFilms returns the known films among ids, ordered by id.
	GetFilms(ctx context.Context, ids []int64) ([]models.Film, error)

	Exists(ctx context.Context, kind models.EntityKind, id int64) (bool, error)
}

// LikeStore owns the set of (film, user) like pairs.
type LikeStore interface {
	// Add records the pair if absent and returns whether it was inserted and
	// the film's count after the call.
	Add(ctx context.Context, filmID, userID int64) (added bool, count int, err error)
	// Remove deletes the pair if present and returns whether it was removed and
	// the film's count after the call.
	Remove(ctx context.Context, filmID, userID int64) (removed bool, count int, err error)
	Count(ctx context.Context, filmID int64) (int, error)
	// Likers returns the users liking the film, ordered by id.
	Likers(ctx context.Context, filmID int64) ([]int64, error)
	// Counts returns the like count of every film in ids; films without likes map to 0.
	Counts(ctx context.Context, filmIDs []int64) (map[int64]int, error)
}

// FriendshipMutator computes the next relationship of a pair from the current one.
// Returning a relationship in state none deletes it.
type FriendshipMutator func(current models.Friendship) (models.Friendship, error)

// FriendshipStore owns the relationship records of user pairs.
type FriendshipStore interface {
	// Update runs fn as a single critical section for the unordered pair {a, b}
	// and persists its result.
	Update(ctx context.Context, a, b int64, fn FriendshipMutator) (models.Friendship, error)
	Get(ctx context.Context, a, b int64) (models.Friendship, error)
	// ListForUser returns every stored relationship that involves userID.
	ListForUser(ctx context.Context, userID int64) ([]models.Friendship, error)
}
