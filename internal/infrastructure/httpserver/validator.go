package httpserver

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is the per-field validation failure shape returned to clients.
type FieldError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// RequestValidator adapts go-playground/validator to echo's Validator
// interface. Field names in error maps follow the json tags.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	return rv.validate.Struct(i)
}

// ValidationErrorMap turns a validator error into the per-field
// {message, code} map. Returns nil if err is not a validation error.
func ValidationErrorMap(err error) map[string]FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	errs := make(map[string]FieldError, len(ve))
	for _, fe := range ve {
		errs[fe.Field()] = FieldError{
			Message: fieldErrorMessage(fe),
			Code:    fe.Tag(),
		}
	}
	return errs
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldTitle(fe.Field()))
	case "email":
		return "Invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fieldTitle(fe.Field()), fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", fieldTitle(fe.Field()), fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must be numeric", fieldTitle(fe.Field()))
	default:
		return fmt.Sprintf("%s is invalid", fieldTitle(fe.Field()))
	}
}

func fieldTitle(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
