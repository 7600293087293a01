package utils

import (
	"testing"
	"time"

	"filmogram-api/models"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestIsValidLogin(t *testing.T) {
	assert.True(t, IsValidLogin("film_fan"))
	assert.False(t, IsValidLogin(""))
	assert.False(t, IsValidLogin("film fan"))
	assert.False(t, IsValidLogin("tab\there"))
}

func TestIsValidReleaseDate(t *testing.T) {
	assert.True(t, IsValidReleaseDate(EarliestReleaseDate))
	assert.False(t, IsValidReleaseDate(EarliestReleaseDate.AddDate(0, 0, -1)))
	assert.False(t, IsValidReleaseDate(time.Time{}))
}

func TestIsValidBirthday(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, IsValidBirthday(now, now))
	assert.True(t, IsValidBirthday(now.AddDate(-30, 0, 0), now))
	assert.False(t, IsValidBirthday(now.AddDate(0, 0, 1), now))
}

func TestRequestValidation(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	registerOn(v)

	valid := models.FilmRequest{Name: "Solaris", ReleaseDate: models.NewDate(1972, time.March, 20), Duration: 166}
	assert.NoError(t, v.Struct(valid))

	early := valid
	early.ReleaseDate = models.NewDate(1800, time.January, 1)
	assert.Error(t, v.Struct(early))

	blank := valid
	blank.Name = "   "
	assert.Error(t, v.Struct(blank))

	user := models.UserRequest{Email: "anna@example.com", Login: "anna", Birthday: models.NewDate(1990, time.May, 17)}
	assert.NoError(t, v.Struct(user))

	user.Birthday = models.Date(time.Now().AddDate(1, 0, 0))
	assert.Error(t, v.Struct(user))

	user.Birthday = models.NewDate(1990, time.May, 17)
	user.Login = "an na"
	assert.Error(t, v.Struct(user))
}
