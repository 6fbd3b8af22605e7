package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of this type, so nobody else can read
// or shadow the userID stored in a request context.
type contextKey string

const userIDKey contextKey = "userID"

// TokenValidator is what the middleware needs from a token issuer.
// *TokenService satisfies it.
type TokenValidator interface {
	Validate(token string) (string, error)
}

var (
	errMissingToken   = errors.New("access token required")
	errMalformedToken = errors.New("authorization header must be of the form: Bearer <token>")
)

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads the JWT from the `Authorization: Bearer <token>` header, validates
// it, and stores the userID in the request context. A missing, malformed,
// invalid or expired token stops the chain with 401 Unauthorized.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r)
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}

			userID, err := tokens.Validate(raw)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, ErrTokenExpired) {
					msg = "token expired"
				}
				writeUnauthorized(w, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext retrieves the authenticated user's ID from the request context.
//
// Returns ("", false) if the request is anonymous.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// bearerToken extracts the token from the Authorization header.
// The scheme is matched case-insensitively, as RFC 6750 allows.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingToken
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errMalformedToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="yellowipe"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}
