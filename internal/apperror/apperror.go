// Package apperror defines the domain error taxonomy shared by the service,
// repository and handler layers.
//
// Each kind of failure has a sentinel (ErrNotFound, ErrValidation, ...) and
// is carried by an *AppError that also holds the human-readable message the
// client sees. Callers check the kind with errors.Is and extract the message
// with errors.As; handler/response.go turns the kind into an HTTP status.
//
// Anything that is NOT an *AppError is treated as an internal failure: it is
// logged and the client only ever sees a generic message.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrDuplicateEmail     = errors.New("duplicate email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
)

// InvalidCredentialsMessage is returned for every failed login, whether the
// email is unknown or the password is wrong.
const InvalidCredentialsMessage = "invalid credentials"

// DuplicateEmailMessage is returned when registering an email that is taken.
const DuplicateEmailMessage = "a user with this email already exists"

type AppError struct {
	Err     error  // sentinel identifying the kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// DuplicateEmail reports that the email is already registered.
// The email itself is deliberately left out of the message.
func DuplicateEmail() *AppError {
	return &AppError{
		Err:     ErrDuplicateEmail,
		Message: DuplicateEmailMessage,
		Field:   "email",
	}
}

// InvalidCredentials is the single login failure. It never says which half
// of the credentials was wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: InvalidCredentialsMessage,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is used when a bearer token is missing, malformed or expired.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
