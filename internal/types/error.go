package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

type (
	Error struct {
		Fields  *map[string]string `json:"fields,omitempty" validate:"optional"`
		Message string             `json:"message"          validate:"required"`
	}
)

func StringError(err string) Error {
	return Error{Message: err}
}

func describeTag(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed to validate while checking condition: %s", fieldError.Tag())
	}
}

func ValidationError(err error) Error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorMap := make(map[string]string)
		for _, fieldError := range validationErrors {
			errorMap[fieldError.Field()] = describeTag(fieldError)
		}

		return Error{Message: "validation error", Fields: &errorMap}
	}

	return Error{Message: "validation error"}
}

// Summary flattens the field errors into a single sentence suitable for a
// flash message. Fields are listed in a stable order.
func (e Error) Summary() string {
	if e.Fields == nil || len(*e.Fields) == 0 {
		return e.Message
	}

	names := make([]string, 0, len(*e.Fields))
	for name := range *e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s %s", name, (*e.Fields)[name]))
	}

	return strings.Join(parts, "; ")
}
