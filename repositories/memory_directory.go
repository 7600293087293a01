package repositories

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"filmogram-api/models"
)

// sequence hands out increasing identifiers for the lifetime of its owner.
type sequence struct {
	last atomic.Int64
}

func (s *sequence) next() int64 {
	return s.last.Add(1)
}

// MemoryDirectory keeps users and films in maps.
type MemoryDirectory struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	films  map[int64]models.Film
	userID sequence
	filmID sequence
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		users: make(map[int64]models.User),
		films: make(map[int64]models.Film),
	}
}

func (d *MemoryDirectory) CreateUser(_ context.Context, user *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	user.ID = d.userID.next()
	d.users[user.ID] = *user
	return nil
}

func (d *MemoryDirectory) UpdateUser(_ context.Context, user *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.users[user.ID]; !ok {
		return fmt.Errorf("user %d: %w", user.ID, ErrRecordNotFound)
	}
	d.users[user.ID] = *user
	return nil
}

func (d *MemoryDirectory) GetUser(_ context.Context, id int64) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	user, ok := d.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrRecordNotFound)
	}
	return &user, nil
}

func (d *MemoryDirectory) ListUsers(_ context.Context) ([]models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	users := make([]models.User, 0, len(d.users))
	for _, u := range d.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b models.User) int { return cmp.Compare(a.ID, b.ID) })
	return users, nil
}

func (d *MemoryDirectory) GetUsers(_ context.Context, ids []int64) ([]models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	users := make([]models.User, 0, len(ids))
	for _, id := range uniqueSorted(ids) {
		if u, ok := d.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (d *MemoryDirectory) CreateFilm(_ context.Context, film *models.Film) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	film.ID = d.filmID.next()
	film.Genres = film.Genres.Clone()
	d.films[film.ID] = *film
	return nil
}

func (d *MemoryDirectory) UpdateFilm(_ context.Context, film *models.Film) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.films[film.ID]; !ok {
		return fmt.Errorf("film %d: %w", film.ID, ErrRecordNotFound)
	}
	stored := *film
	stored.Genres = film.Genres.Clone()
	d.films[film.ID] = stored
	return nil
}

func (d *MemoryDirectory) GetFilm(_ context.Context, id int64) (*models.Film, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	film, ok := d.films[id]
	if !ok {
		return nil, fmt.Errorf("film %d: %w", id, ErrRecordNotFound)
	}
	film.Genres = film.Genres.Clone()
	return &film, nil
}

func (d *MemoryDirectory) ListFilms(_ context.Context) ([]models.Film, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	films := make([]models.Film, 0, len(d.films))
	for _, f := range d.films {
		f.Genres = f.Genres.Clone()
		films = append(films, f)
	}
	slices.SortFunc(films, func(a, b models.Film) int { return cmp.Compare(a.ID, b.ID) })
	return films, nil
}

func (d *MemoryDirectory) GetFilms(_ context.Context, ids []int64) ([]models.Film, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	films := make([]models.Film, 0, len(ids))
	for _, id := range uniqueSorted(ids) {
		if f, ok := d.films[id]; ok {
			f.Genres = f.Genres.Clone()
			films = append(films, f)
		}
	}
	return films, nil
}

func (d *MemoryDirectory) Exists(_ context.Context, kind models.EntityKind, id int64) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	switch kind {
	case models.EntityUser:
		_, ok := d.users[id]
		return ok, nil
	case models.EntityFilm:
		_, ok := d.films[id]
		return ok, nil
	default:
		return false, fmt.Errorf("unknown entity kind %q", kind)
	}
}

func uniqueSorted(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
