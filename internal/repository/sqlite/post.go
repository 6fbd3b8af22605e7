package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/yellowipe/internal/apperror"
	"github.com/sakif/yellowipe/internal/model"
	"github.com/sakif/yellowipe/internal/repository"
)

var _ repository.PostRepository = (*DB)(nil)

// CreatePost inserts a new post with an empty like set and no comments.
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	now := time.Now().UTC()
	post.ID = xid.New().String()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Likes = []string{}
	post.Comments = []model.Comment{}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, author_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		post.ID,
		post.AuthorID,
		post.Content,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

// GetPostByID retrieves a post together with its likes and comments.
func (db *DB) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, author_id, content, created_at, updated_at
		 FROM posts WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	posts := []model.Post{p}
	if err := db.loadDetails(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// ListPosts returns one page of posts, newest first.
// The id tie-break keeps the order stable for posts created in the same instant.
func (db *DB) ListPosts(ctx context.Context, opts repository.ListOptions) ([]model.Post, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	posts, err := db.queryPosts(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if err := db.loadDetails(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// queryPosts reads the bare post rows. It must fully drain its rows before
// returning: the pool has a single connection.
func (db *DB) queryPosts(ctx context.Context, limit, offset int) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, author_id, content, created_at, updated_at
		 FROM posts
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0, limit)
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// CountPosts returns the total number of posts.
func (db *DB) CountPosts(ctx context.Context) (int64, error) {
	var n int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting posts: %w", err)
	}
	return n, nil
}

// AddLike adds userID to the post's like set if it is not there yet.
//
// ON CONFLICT DO NOTHING on the (post_id, user_id) primary key makes the
// membership check and the insert one statement, so two concurrent likes by
// the same user cannot produce a duplicate.
func (db *DB) AddLike(ctx context.Context, postID, userID string) (*model.Post, bool, error) {
	if err := db.requirePost(ctx, postID); err != nil {
		return nil, false, err
	}

	now := time.Now().UTC()
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID, userID, now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: liking post %s: %w", postID, err)
	}

	added, err := db.changed(ctx, result, postID, now)
	if err != nil {
		return nil, false, err
	}

	post, err := db.GetPostByID(ctx, postID)
	return post, added, err
}

// RemoveLike removes userID from the post's like set if present.
func (db *DB) RemoveLike(ctx context.Context, postID, userID string) (*model.Post, bool, error) {
	if err := db.requirePost(ctx, postID); err != nil {
		return nil, false, err
	}

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`,
		postID, userID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: unliking post %s: %w", postID, err)
	}

	removed, err := db.changed(ctx, result, postID, time.Now().UTC())
	if err != nil {
		return nil, false, err
	}

	post, err := db.GetPostByID(ctx, postID)
	return post, removed, err
}

// AddComment appends a comment to the post. ID and timestamp are assigned here.
func (db *DB) AddComment(ctx context.Context, postID string, comment *model.Comment) (*model.Post, error) {
	if err := db.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	comment.ID = xid.New().String()
	comment.CreatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, author_id, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ID, postID, comment.AuthorID, comment.Content, comment.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: adding comment to post %s: %w", postID, err)
	}

	if err := db.touch(ctx, postID, now); err != nil {
		return nil, err
	}

	return db.GetPostByID(ctx, postID)
}

// DeletePost removes a post; its likes and comments cascade.
// Same pattern as the user update: RowsAffected == 0 means not found.
func (db *DB) DeletePost(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}

// requirePost returns apperror.ErrNotFound unless the post exists.
func (db *DB) requirePost(ctx context.Context, id string) error {
	var one int
	err := db.conn.QueryRowContext(ctx, `SELECT 1 FROM posts WHERE id = ?`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("post", id)
		}
		return fmt.Errorf("sqlite: checking post %s: %w", id, err)
	}
	return nil
}

// changed reports whether result touched a row and, if so, bumps updated_at.
func (db *DB) changed(ctx context.Context, result sql.Result, postID string, at time.Time) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	return true, db.touch(ctx, postID, at)
}

func (db *DB) touch(ctx context.Context, postID string, at time.Time) error {
	if _, err := db.conn.ExecContext(ctx,
		`UPDATE posts SET updated_at = ? WHERE id = ?`, at, postID,
	); err != nil {
		return fmt.Errorf("sqlite: touching post %s: %w", postID, err)
	}
	return nil
}

// loadDetails fills Likes and Comments for every post in place, using one
// query per table for the whole batch.
func (db *DB) loadDetails(ctx context.Context, posts []model.Post) error {
	index := make(map[string]int, len(posts))
	args := make([]any, len(posts))
	for i := range posts {
		posts[i].Likes = []string{}
		posts[i].Comments = []model.Comment{}
		index[posts[i].ID] = i
		args[i] = posts[i].ID
	}
	if len(posts) == 0 {
		return nil
	}

	if err := db.loadLikes(ctx, posts, index, args); err != nil {
		return err
	}
	return db.loadComments(ctx, posts, index, args)
}

func (db *DB) loadLikes(ctx context.Context, posts []model.Post, index map[string]int, args []any) error {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT post_id, user_id FROM post_likes
		 WHERE post_id IN (`+placeholders(len(args))+`)
		 ORDER BY rowid`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading likes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var postID, userID string
		if err := rows.Scan(&postID, &userID); err != nil {
			return fmt.Errorf("sqlite: scanning like row: %w", err)
		}
		i := index[postID]
		posts[i].Likes = append(posts[i].Likes, userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating likes: %w", err)
	}
	return nil
}

func (db *DB) loadComments(ctx context.Context, posts []model.Post, index map[string]int, args []any) error {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, post_id, author_id, content, created_at FROM comments
		 WHERE post_id IN (`+placeholders(len(args))+`)
		 ORDER BY created_at, id`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("sqlite: loading comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c model.Comment
		var postID string
		if err := rows.Scan(&c.ID, &postID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		i := index[postID]
		posts[i].Comments = append(posts[i].Comments, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return nil
}
