package bankdelivery

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ErrorMsg returns a human readable message for the first failed binding validation.
func ErrorMsg(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}

	field := ve[0]

	switch field.Tag() {
	case "required":
		return field.Field() + " field is required"
	case "min":
		return field.Field() + " must be at least " + field.Param() + " characters long"
	default:
		return field.Field() + " field is invalid"
	}
}
