// Package service holds the business rules of the API.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP)  → parses requests, writes responses
//	Service         → validates input, enforces rules, orchestrates
//	Repository      → reads/writes the store (MongoDB or SQLite)
//
// Services take repository INTERFACES, never a concrete store, so the same
// code runs on either backend and the tests run on in-memory fakes.
//
// Every error a service returns is either an *apperror.AppError (the client
// sees its message) or a wrapped internal error (the client sees a generic
// message and the real one is logged by the handler).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/yellowipe/internal/apperror"
	"github.com/sakif/yellowipe/internal/auth"
	"github.com/sakif/yellowipe/internal/model"
	"github.com/sakif/yellowipe/internal/repository"
)

// AuthService handles accounts: registration, login and profiles.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → issue/validate JWTs
//   - passwords  *auth.PasswordService      → bcrypt hashing
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult is returned by Register and Login: the owner's view of the
// account plus a freshly issued bearer token.
type AuthResult struct {
	User  model.PublicUser `json:"user"`
	Token string           `json:"token"`
}

// Register creates an account and signs the new user in.
//
// The email pre-check gives the common case a clean error; the store's
// unique index catches two registrations racing past the check, and the
// repository reports that as the same DuplicateEmail error.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := check(in); err != nil {
		return nil, err
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password", "password must be at most 72 bytes")
	}

	_, err := s.users.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperror.DuplicateEmail()
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("service/auth: checking email: %w", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user registered", slog.String("userID", user.ID))

	return s.issue(user)
}

// Login checks the credentials and issues a new token.
//
// An unknown email and a wrong password produce the SAME error, so the
// response never reveals which emails have accounts.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)

	if err := check(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login rejected", slog.String("userID", user.ID))
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: verifying password: %w", err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return s.issue(user)
}

// GetProfile returns the caller's own account.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (model.PublicUser, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return model.PublicUser{}, wrapLookup("service/auth: fetching profile", err)
	}
	return user.Public(), nil
}

// GetPublicUser returns another user's account without the email.
func (s *AuthService) GetPublicUser(ctx context.Context, id string) (model.UserSummary, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return model.UserSummary{}, wrapLookup("service/auth: fetching user", err)
	}
	return user.Summary(), nil
}

// UpdateProfile changes the supplied fields only. An empty update is not an
// error: it returns the profile unchanged.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (model.PublicUser, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		in.Bio = &bio
	}

	if err := check(in); err != nil {
		return model.PublicUser{}, err
	}

	update := model.ProfileUpdate{Name: in.Name, Bio: in.Bio}
	if update.IsEmpty() {
		return s.GetProfile(ctx, userID)
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		return model.PublicUser{}, wrapLookup("service/auth: updating profile", err)
	}

	s.logger.Info("profile updated", slog.String("userID", userID))

	return user.Public(), nil
}

// ValidateToken returns the user id a token was issued to. It satisfies
// auth.TokenValidator so the middleware can depend on the service.
func (s *AuthService) ValidateToken(token string) (string, error) {
	return s.tokens.Validate(token)
}

// Validate is ValidateToken under the name auth.TokenValidator expects.
func (s *AuthService) Validate(token string) (string, error) {
	return s.ValidateToken(token)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user.Public(), Token: token}, nil
}

// wrapLookup passes domain errors through untouched and wraps the rest.
func wrapLookup(action string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return fmt.Errorf("%s: %w", action, err)
}
