package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/yellowipe/internal/apperror"
	"github.com/sakif/yellowipe/internal/model"
	"github.com/sakif/yellowipe/internal/repository"
)

// PostService handles posts and everything hanging off them: likes,
// comments and deletion.
//
// It needs the user repository as well, to fill in the {_id, name} author
// object on every post and comment it returns.
type PostService struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	logger *slog.Logger
}

// NewPostService creates a PostService.
func NewPostService(posts repository.PostRepository, users repository.UserRepository, logger *slog.Logger) *PostService {
	return &PostService{
		posts:  posts,
		users:  users,
		logger: logger,
	}
}

// Create publishes a post by authorID. Content is trimmed first, so a post
// made only of whitespace counts as empty.
func (s *PostService) Create(ctx context.Context, authorID, content string) (*model.Post, error) {
	in := postInput{Content: strings.TrimSpace(content)}
	if err := check(in); err != nil {
		return nil, err
	}

	post := &model.Post{AuthorID: authorID, Content: in.Content}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("authorID", authorID),
	)

	if err := s.populate(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// List returns one page of posts, newest first.
//
// PAGINATION RULES:
//   - page < 1 becomes 1
//   - limit < 1 becomes DefaultPageSize
//   - limit is capped at MaxPageSize
func (s *PostService) List(ctx context.Context, page, limit int) (*model.PostPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	posts, err := s.posts.ListPosts(ctx, repository.ListOptions{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts: %w", err)
	}
	if posts == nil {
		posts = []model.Post{} // encode as [], not null
	}

	total, err := s.posts.CountPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/post: counting posts: %w", err)
	}

	ptrs := make([]*model.Post, len(posts))
	for i := range posts {
		ptrs[i] = &posts[i]
	}
	if err := s.populate(ctx, ptrs...); err != nil {
		return nil, err
	}

	return &model.PostPage{
		Posts:      posts,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}

// GetByID returns a single post.
func (s *PostService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, wrapLookup("service/post: getting post", err)
	}
	if err := s.populate(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ToggleLike likes the post for userID, or removes the like if there is one.
// liked reports the state AFTER the call.
//
// Both branches are single conditional writes in the store. The add is tried
// first; if it changed nothing the user already liked the post and the like
// is removed instead.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (post *model.Post, liked bool, err error) {
	post, added, err := s.posts.AddLike(ctx, postID, userID)
	if err != nil {
		return nil, false, wrapLookup("service/post: liking post", err)
	}

	liked = true
	if !added {
		post, _, err = s.posts.RemoveLike(ctx, postID, userID)
		if err != nil {
			return nil, false, wrapLookup("service/post: unliking post", err)
		}
		liked = false
	}

	s.logger.Debug("post like toggled",
		slog.String("postID", postID),
		slog.String("userID", userID),
		slog.Bool("liked", liked),
	)

	if err := s.populate(ctx, post); err != nil {
		return nil, false, err
	}
	return post, liked, nil
}

// AddComment appends a comment by userID and returns the updated post.
func (s *PostService) AddComment(ctx context.Context, postID, userID, content string) (*model.Post, error) {
	in := commentInput{Content: strings.TrimSpace(content)}
	if err := check(in); err != nil {
		return nil, err
	}

	comment := &model.Comment{AuthorID: userID, Content: in.Content}
	post, err := s.posts.AddComment(ctx, postID, comment)
	if err != nil {
		return nil, wrapLookup("service/post: adding comment", err)
	}

	s.logger.Info("comment added",
		slog.String("postID", postID),
		slog.String("commentID", comment.ID),
	)

	if err := s.populate(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post. Only its author may do that.
func (s *PostService) Delete(ctx context.Context, postID, userID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return wrapLookup("service/post: getting post", err)
	}

	if post.AuthorID != userID {
		return apperror.Forbidden("you do not have permission to delete this post")
	}

	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return wrapLookup("service/post: deleting post", err)
	}

	s.logger.Info("post deleted",
		slog.String("postID", postID),
		slog.String("userID", userID),
	)
	return nil
}

// populate fills in Author on the posts and all their comments with one
// batched user lookup. An author that no longer exists stays nil.
func (s *PostService) populate(ctx context.Context, posts ...*model.Post) error {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, p := range posts {
		add(p.AuthorID)
		for _, c := range p.Comments {
			add(c.AuthorID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("service/post: loading authors: %w", err)
	}

	author := func(id string) *model.Author {
		u, ok := users[id]
		if !ok {
			return nil
		}
		return &model.Author{ID: u.ID, Name: u.Name}
	}
	for _, p := range posts {
		p.Author = author(p.AuthorID)
		for i := range p.Comments {
			p.Comments[i].Author = author(p.Comments[i].AuthorID)
		}
	}
	return nil
}
