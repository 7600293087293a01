// File: /models/film.go
package models

import (
	"encoding/json"
	"time"
)

type Film struct {
	ID          int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string      `json:"name" gorm:"not null;size:255"`
	Description string      `json:"description" gorm:"size:200"`
	ReleaseDate time.Time   `json:"release_date" gorm:"type:date"`
	Duration    int         `json:"duration"`
	Genres      StringSlice `json:"genres"`
	Mpa         string      `json:"mpa" gorm:"size:16"`
	LikesCount  int         `json:"likes_count" gorm:"not null;default:0"`
	CreatedAt   time.Time   `json:"-"`
	UpdatedAt   time.Time   `json:"-"`
}

// FilmLike is a single (film, user) membership in the like ledger.
type FilmLike struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	FilmID    int64     `json:"film_id" gorm:"not null;uniqueIndex:uk_film_likes_film_user,priority:1"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:uk_film_likes_film_user,priority:2;index"`
	CreatedAt time.Time `json:"created_at"`
}

// FilmRequest is the body accepted by POST and PUT /films.
type FilmRequest struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name" binding:"required,notblank"`
	Description string   `json:"description" binding:"max=200"`
	ReleaseDate Date     `json:"release_date" binding:"releasedate"`
	Duration    int      `json:"duration" binding:"gte=0"`
	Genres      []string `json:"genres" binding:"omitempty,dive,required"`
	Mpa         string   `json:"mpa" binding:"omitempty,max=16"`
}

// ToFilm converts the request into a record. LikesCount is owned by the like ledger.
func (r FilmRequest) ToFilm() Film {
	return Film{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		ReleaseDate: r.ReleaseDate.Time(),
		Duration:    r.Duration,
		Genres:      StringSlice(r.Genres).Clone(),
		Mpa:         r.Mpa,
	}
}

// MarshalJSON renders the release date as a calendar date.
func (f Film) MarshalJSON() ([]byte, error) {
	type alias Film
	return json.Marshal(struct {
		alias
		ReleaseDate Date `json:"release_date"`
	}{alias: alias(f), ReleaseDate: Date(f.ReleaseDate)})
}

// LikeResponse is returned by the like endpoints.
type LikeResponse struct {
	FilmID     int64 `json:"film_id"`
	LikesCount int   `json:"likes_count"`
	Removed    *bool `json:"removed,omitempty"`
}
