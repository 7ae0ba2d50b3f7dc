package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message,omitempty"`
}

// ValidateStruct runs the `validate` tags of s.
func ValidateStruct(s any) error {
	return validate.Struct(s)
}

// FormatValidationErrors converts validator.ValidationErrors into a slice of ValidationError
func FormatValidationErrors(err error) []ValidationError {
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make([]ValidationError, len(ve))
	for i, fe := range ve {
		field := lowerFirst(fe.Field())
		out[i] = ValidationError{Field: field, Tag: fe.Tag()}
		switch fe.Tag() {
		case "required":
			out[i].Message = fmt.Sprintf("%s is required", field)
		case "email":
			out[i].Message = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			out[i].Message = fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		case "max":
			out[i].Message = fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		case "len":
			out[i].Message = fmt.Sprintf("%s must be exactly %s characters long", field, fe.Param())
		case "oneof":
			out[i].Message = fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
		default:
			out[i].Message = fmt.Sprintf("Validation failed on field '%s' for tag '%s'", field, fe.Tag())
		}
	}
	return out
}

// FirstValidationMessage returns the message of the first failed field, or "" when err is not a validation error.
func FirstValidationMessage(err error) string {
	if errs := FormatValidationErrors(err); len(errs) > 0 {
		return errs[0].Message
	}
	return ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
