package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/yellowipe/internal/apperror"
	"github.com/sakif/yellowipe/internal/model"
	"github.com/sakif/yellowipe/internal/service"
)

// Posts is the part of service.PostService the HTTP layer uses.
type Posts interface {
	Create(ctx context.Context, authorID, content string) (*model.Post, error)
	List(ctx context.Context, page, limit int) (*model.PostPage, error)
	GetByID(ctx context.Context, id string) (*model.Post, error)
	ToggleLike(ctx context.Context, postID, userID string) (*model.Post, bool, error)
	AddComment(ctx context.Context, postID, userID, content string) (*model.Post, error)
	Delete(ctx context.Context, postID, userID string) error
}

var _ Posts = (*service.PostService)(nil)

// PostResponse wraps a single post, with a message on writes.
type PostResponse struct {
	Message string      `json:"message,omitempty"`
	Post    *model.Post `json:"post"`
}

type contentRequest struct {
	Content string `json:"content"`
}

// PostHandler serves /posts/*.
type PostHandler struct {
	posts  Posts
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts Posts, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, logger: logger}
}

// HandleList returns one page of the feed.
//
// HTTP: GET /api/posts?page=1&limit=10
//
// Missing or non-numeric page/limit fall back to the defaults; the service
// clamps out-of-range values.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt(q.Get("page"), service.DefaultPage)
	limit := queryInt(q.Get("limit"), service.DefaultPageSize)

	result, err := h.posts.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleGet returns one post.
//
// HTTP: GET /api/posts/{id}
func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetByID(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, PostResponse{Post: post})
}

// HandleCreate publishes a post as the caller.
//
// HTTP: POST /api/posts (bearer token required)
// REQUEST BODY: {"content": "hello"}
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("access token required"))
		return
	}

	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	post, err := h.posts.Create(r.Context(), userID, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, PostResponse{
		Message: "post created successfully",
		Post:    post,
	})
}

// HandleToggleLike likes or un-likes a post as the caller.
//
// HTTP: PUT /api/posts/{id}/like (bearer token required)
func (h *PostHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("access token required"))
		return
	}

	post, liked, err := h.posts.ToggleLike(r.Context(), pathParam(r, "id"), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	msg := "like removed"
	if liked {
		msg = "post liked"
	}
	writeJSON(w, http.StatusOK, PostResponse{Message: msg, Post: post})
}

// HandleAddComment comments on a post as the caller.
//
// HTTP: POST /api/posts/{id}/comments (bearer token required)
// REQUEST BODY: {"content": "nice"}
func (h *PostHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("access token required"))
		return
	}

	var req contentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	post, err := h.posts.AddComment(r.Context(), pathParam(r, "id"), userID, req.Content)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, PostResponse{
		Message: "comment added successfully",
		Post:    post,
	})
}

// HandleDelete deletes a post the caller wrote.
//
// HTTP: DELETE /api/posts/{id} (bearer token required)
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(r)
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized("access token required"))
		return
	}

	if err := h.posts.Delete(r.Context(), pathParam(r, "id"), userID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "post deleted successfully"})
}

// pathParam reads a chi URL parameter.
func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

func queryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
