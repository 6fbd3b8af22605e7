package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, so the API has
// exactly one success shape per route and exactly one error shape:
//
//	{"error": "not_found", "message": "post not found with id abc123"}
//	{"error": "validation_error", "message": "name is required", "field": "name"}

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/yellowipe/internal/apperror"
)

// InternalErrorMessage is all a client ever learns about an unexpected failure.
const InternalErrorMessage = "an internal error occurred"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`           // machine-readable kind
	Message string `json:"message"`         // human-readable description
	Field   string `json:"field,omitempty"` // offending input field, when known
}

// MessageResponse is the body of responses that carry only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends data as JSON with the given status.
// Headers and status must be written before the body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps err to a status and an ErrorResponse.
//
// ERROR MAPPING:
//
//	ErrValidation, ErrDuplicateEmail, ErrInvalidCredentials → 400
//	ErrUnauthorized                                         → 401
//	ErrForbidden                                            → 403
//	ErrNotFound                                             → 404
//	anything else                                           → 500
//
// A 500 is logged with the real error; the client gets InternalErrorMessage.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		logger.Error("unhandled error", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: InternalErrorMessage,
		})
		return
	}

	status, kind := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error("unclassified application error", slog.String("error", err.Error()))
	}

	writeJSON(w, status, ErrorResponse{
		Error:   kind,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrDuplicateEmail):
		return http.StatusBadRequest, "duplicate_email"
	case errors.Is(err, apperror.ErrInvalidCredentials):
		return http.StatusBadRequest, "invalid_credentials"
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeJSON reads the request body into dst.
//
// Any malformed body (bad syntax, wrong types, a second JSON value, too
// large) becomes a validation error so the client gets a 400, never a 500.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxErr):
			return apperror.ValidationFailed("", fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit))
		case errors.As(err, &typeErr):
			return apperror.ValidationFailed(typeErr.Field, fmt.Sprintf("%s has the wrong type", typeErr.Field))
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("", "request body is required")
		default:
			return apperror.ValidationFailed("", "request body must be valid JSON")
		}
	}
	if dec.More() {
		return apperror.ValidationFailed("", "request body must contain a single JSON object")
	}
	return nil
}

// NotFound answers unmatched routes.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Error:   "not_found",
		Message: "route not found",
	})
}

// MethodNotAllowed answers a known path with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error:   "method_not_allowed",
		Message: "method not allowed",
	})
}
