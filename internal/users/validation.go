package users

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator with the users module tags registered:
//
//	maxbytes=N    string is at most N bytes long (bcrypt counts bytes, not runes)
//	nonul         string has no NUL characters
//	calendardate  YYYY-MM-DD with a year of at least 1
func newValidator() *validator.Validate {
	v := validator.New()

	tags := map[string]validator.Func{
		"maxbytes":     maxBytes,
		"nonul":        noNUL,
		"calendardate": calendarDate,
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return v
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func noNUL(fl validator.FieldLevel) bool {
	return !strings.ContainsRune(fl.Field().String(), 0)
}

func calendarDate(fl validator.FieldLevel) bool {
	t, err := time.Parse(time.DateOnly, fl.Field().String())
	return err == nil && t.Year() >= 1
}
