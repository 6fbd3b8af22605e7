package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/yellowipe/internal/apperror"
)

// Input limits. Lengths are counted in characters (runes), not bytes.
const (
	MinNameLength     = 2
	MaxNameLength     = 50
	MinPasswordLength = 6
	MaxBioLength      = 200
	MaxPostLength     = 1000
	MaxCommentLength  = 500
	DefaultPage       = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
)

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileInput is a partial profile change. Omitted (nil) fields stay as
// they are.
type ProfileInput struct {
	Name *string `json:"name" validate:"omitnil,min=2,max=50"`
	Bio  *string `json:"bio" validate:"omitnil,max=200"`
}

type postInput struct {
	Content string `json:"content" validate:"required,max=1000"`
}

type commentInput struct {
	Content string `json:"content" validate:"required,max=500"`
}

// VALIDATOR SETUP:
// A single *validator.Validate caches struct metadata, so it is built once
// and shared. Field names in errors come from the json tag, which is what
// the client sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// check validates s and converts the first failing rule into an
// apperror validation error naming the field.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("service: validating input: %w", err)
	}

	fe := fieldErrs[0]
	return apperror.ValidationFailed(fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
