// File: /utils/validators.go
package utils

import (
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"filmogram-api/models"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// EarliestReleaseDate is the date of the first public film screening.
var EarliestReleaseDate = time.Date(1895, time.December, 28, 0, 0, 0, 0, time.UTC)

var registerOnce sync.Once

// RegisterValidators installs the catalog's custom binding tags on gin's validator.
// Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		registerOn(v)
	})
}

func registerOn(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(models.Date); ok {
			return d.Time()
		}
		return nil
	}, models.Date{})

	_ = v.RegisterValidation("nospaces", noSpaces)
	_ = v.RegisterValidation("notblank", notBlank)
	_ = v.RegisterValidation("pastdate", pastDate)
	_ = v.RegisterValidation("releasedate", releaseDate)
}

func noSpaces(fl validator.FieldLevel) bool {
	return IsValidLogin(fl.Field().String())
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func pastDate(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && IsValidBirthday(t, time.Now())
}

func releaseDate(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	return ok && IsValidReleaseDate(t)
}

// IsValidLogin reports whether login is non-empty and has no whitespace.
func IsValidLogin(login string) bool {
	if login == "" {
		return false
	}
	return strings.IndexFunc(login, unicode.IsSpace) < 0
}

// IsValidBirthday rejects birthdays after now.
func IsValidBirthday(birthday, now time.Time) bool {
	return !birthday.After(now)
}

func IsValidReleaseDate(release time.Time) bool {
	return !release.Before(EarliestReleaseDate)
}
