// internal/utils/validator.go
package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("search_term", validateSearchTerm)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateSearchTerm(fl validator.FieldLevel) bool {
	term := strings.TrimSpace(fl.Field().String())
	return len(term) > 0 && len(term) <= 200
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must contain at least " + e.Param() + " items"
	case "max":
		return e.Field() + " must contain at most " + e.Param() + " items"
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "url":
		return e.Field() + " must be a valid URL"
	case "search_term":
		return e.Field() + " must be a non-empty term of at most 200 characters"
	default:
		return e.Field() + " is invalid"
	}
}
