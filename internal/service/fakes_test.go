package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sakif/yellowipe/internal/apperror"
	"github.com/sakif/yellowipe/internal/model"
	"github.com/sakif/yellowipe/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// Hand-written in-memory fakes of the repository interfaces. They follow the
// same contracts as the real stores (NotFound for missing rows, DuplicateEmail
// on a taken email, set semantics for likes) so the services can be tested
// without a database.
//
// Set the *Err fields to simulate a store failure.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*model.User
	nextID int

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.DuplicateEmail()
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "user not found"}
}

func (f *fakeUserRepo) GetUsersByIDs(_ context.Context, ids []string) (map[string]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			copied := *u
			out[id] = &copied
		}
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, id string, update model.ProfileUpdate) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

// delete simulates an account that disappeared after its token was issued.
func (f *fakeUserRepo) delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

type fakePostRepo struct {
	mu     sync.Mutex
	posts  []*model.Post // insertion order, oldest first
	nextID int
	clock  time.Time

	listErr error
}

var _ repository.PostRepository = (*fakePostRepo)(nil)

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// tick returns a strictly increasing timestamp so ordering is deterministic.
func (f *fakePostRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakePostRepo) find(id string) (int, *model.Post) {
	for i, p := range f.posts {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}

func clonePost(p *model.Post) *model.Post {
	c := *p
	c.Likes = append([]string{}, p.Likes...)
	c.Comments = append([]model.Comment{}, p.Comments...)
	return &c
}

func (f *fakePostRepo) CreatePost(_ context.Context, post *model.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	post.ID = fmt.Sprintf("post-%d", f.nextID)
	post.Likes = []string{}
	post.Comments = []model.Comment{}
	post.CreatedAt = f.tick()
	post.UpdatedAt = post.CreatedAt
	f.posts = append(f.posts, clonePost(post))
	return nil
}

func (f *fakePostRepo) GetPostByID(_ context.Context, id string) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, p := f.find(id)
	if p == nil {
		return nil, apperror.NotFound("post", id)
	}
	return clonePost(p), nil
}

func (f *fakePostRepo) ListPosts(_ context.Context, opts repository.ListOptions) ([]model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Post
	for i := len(f.posts) - 1 - opts.Offset; i >= 0 && len(out) < opts.Limit; i-- {
		out = append(out, *clonePost(f.posts[i]))
	}
	return out, nil
}

func (f *fakePostRepo) CountPosts(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.posts)), nil
}

func (f *fakePostRepo) AddLike(_ context.Context, postID, userID string) (*model.Post, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, p := f.find(postID)
	if p == nil {
		return nil, false, apperror.NotFound("post", postID)
	}
	if p.LikedBy(userID) {
		return clonePost(p), false, nil
	}
	p.Likes = append(p.Likes, userID)
	return clonePost(p), true, nil
}

func (f *fakePostRepo) RemoveLike(_ context.Context, postID, userID string) (*model.Post, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, p := f.find(postID)
	if p == nil {
		return nil, false, apperror.NotFound("post", postID)
	}
	for i, id := range p.Likes {
		if id == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return clonePost(p), true, nil
		}
	}
	return clonePost(p), false, nil
}

func (f *fakePostRepo) AddComment(_ context.Context, postID string, comment *model.Comment) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, p := f.find(postID)
	if p == nil {
		return nil, apperror.NotFound("post", postID)
	}
	f.nextID++
	comment.ID = fmt.Sprintf("comment-%d", f.nextID)
	comment.CreatedAt = f.tick()
	p.Comments = append(p.Comments, *comment)
	return clonePost(p), nil
}

func (f *fakePostRepo) DeletePost(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, p := f.find(id)
	if p == nil {
		return apperror.NotFound("post", id)
	}
	f.posts = append(f.posts[:i], f.posts[i+1:]...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
