package model

import "time"

// Post is a short text update.
//
// The JSON shape matches what the web client expects: the post id is "_id",
// "author" is a populated {_id, name} object, "likes" is the list of user ids
// that liked the post.
//
// AuthorID is what the store keeps; Author is filled in by the service layer
// just before the post is returned (see service.PostService.populate).
type Post struct {
	ID        string    `json:"_id"`
	AuthorID  string    `json:"-"`
	Author    *Author   `json:"author"`
	Content   string    `json:"content"`
	Likes     []string  `json:"likes"`    // set semantics, insertion order
	Comments  []Comment `json:"comments"` // append-only, oldest first
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is embedded in its parent Post.
type Comment struct {
	ID        string    `json:"_id"`
	AuthorID  string    `json:"-"`
	Author    *Author   `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Author is the populated reference to a post or comment owner.
type Author struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// LikedBy reports whether userID is in the post's like set.
func (p *Post) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Pagination describes one page of a listing.
// Pages is ceil(Total / Limit).
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPagination computes the page count for total items split by limit.
func NewPagination(page, limit int, total int64) Pagination {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// PostPage is the result of listing posts.
type PostPage struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}
