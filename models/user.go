// File: /models/user.go
package models

import (
	"encoding/json"
	"strings"
	"time"
)

type User struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Email     string    `json:"email" gorm:"not null;size:255"`
	Login     string    `json:"login" gorm:"index;not null;size:100"`
	Name      string    `json:"name" gorm:"size:255"`
	Birthday  time.Time `json:"birthday" gorm:"type:date"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// UserRequest is the body accepted by POST and PUT /users.
type UserRequest struct {
	ID       int64  `json:"id"`
	Email    string `json:"email" binding:"required,email"`
	Login    string `json:"login" binding:"required,nospaces"`
	Name     string `json:"name"`
	Birthday Date   `json:"birthday" binding:"pastdate"`
}

// ToUser converts the request into a record, defaulting a blank name to the login.
func (r UserRequest) ToUser() User {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = r.Login
	}
	return User{
		ID:       r.ID,
		Email:    r.Email,
		Login:    r.Login,
		Name:     name,
		Birthday: r.Birthday.Time(),
	}
}

// MarshalJSON renders the birthday as a calendar date.
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		Birthday Date `json:"birthday"`
	}{alias: alias(u), Birthday: Date(u.Birthday)})
}
