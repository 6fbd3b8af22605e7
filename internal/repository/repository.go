// Package repository declares the storage interfaces the services depend on.
//
// Implementations live in sub-packages (mongodb, sqlite). Each one translates
// "no such record" into apperror.ErrNotFound and a taken email into
// apperror.ErrDuplicateEmail, so services never see driver errors for
// those cases. Ids are opaque strings; malformed ids behave like unknown ones.
package repository

import (
	"context"

	"github.com/sakif/yellowipe/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	// CreateUser stores a new user and fills in ID and timestamps.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// GetUsersByIDs returns the users that exist among ids, keyed by id.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
	UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error)
}

type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	// ListPosts returns one page, newest first.
	ListPosts(ctx context.Context, opts ListOptions) ([]model.Post, error)
	CountPosts(ctx context.Context) (int64, error)
	// AddLike and RemoveLike are atomic conditional writes. The bool reports
	// whether the like set actually changed.
	AddLike(ctx context.Context, postID, userID string) (*model.Post, bool, error)
	RemoveLike(ctx context.Context, postID, userID string) (*model.Post, bool, error)
	AddComment(ctx context.Context, postID string, comment *model.Comment) (*model.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// Store is a connected backend that provides both repositories.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Ping(ctx context.Context) error
	Close() error
}
