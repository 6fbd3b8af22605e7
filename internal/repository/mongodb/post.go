package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sakif/yellowipe/internal/apperror"
	"github.com/sakif/yellowipe/internal/model"
	"github.com/sakif/yellowipe/internal/repository"
)

type postRepo Store

var _ repository.PostRepository = (*postRepo)(nil)

type postDocument struct {
	ID        bson.ObjectID     `bson:"_id"`
	Author    bson.ObjectID     `bson:"author"`
	Content   string            `bson:"content"`
	Likes     []bson.ObjectID   `bson:"likes"`
	Comments  []commentDocument `bson:"comments"`
	CreatedAt time.Time         `bson:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

type commentDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	Author    bson.ObjectID `bson:"author"`
	Content   string        `bson:"content"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (d *postDocument) toModel() model.Post {
	p := model.Post{
		ID:        d.ID.Hex(),
		AuthorID:  d.Author.Hex(),
		Content:   d.Content,
		Likes:     make([]string, 0, len(d.Likes)),
		Comments:  make([]model.Comment, 0, len(d.Comments)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, id := range d.Likes {
		p.Likes = append(p.Likes, id.Hex())
	}
	for _, c := range d.Comments {
		p.Comments = append(p.Comments, model.Comment{
			ID:        c.ID.Hex(),
			AuthorID:  c.Author.Hex(),
			Content:   c.Content,
			CreatedAt: c.CreatedAt,
		})
	}
	return p
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// CreatePost inserts a post with an empty like set and no comments.
// The author id must be an ObjectID issued by this store.
func (r *postRepo) CreatePost(ctx context.Context, post *model.Post) error {
	author, ok := objectID(post.AuthorID)
	if !ok {
		return fmt.Errorf("mongodb: creating post: invalid author id %q", post.AuthorID)
	}

	ctx, cancel := (*Store)(r).opContext(ctx)
	defer cancel()

	t := now()
	doc := postDocument{
		ID:        bson.NewObjectID(),
		Author:    author,
		Content:   post.Content,
		Likes:     []bson.ObjectID{},
		Comments:  []commentDocument{},
		CreatedAt: t,
		UpdatedAt: t,
	}

	if _, err := r.posts.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("mongodb: creating post: %w", err)
	}

	*post = doc.toModel()
	return nil
}

func (r *postRepo) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, apperror.NotFound("post", id)
	}

	ctx, cancel := (*Store)(r).opContext(ctx)
	defer cancel()

	var doc postDocument
	if err := r.posts.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("mongodb: getting post %s: %w", id, err)
	}

	p := doc.toModel()
	return &p, nil
}

// ListPosts returns one page sorted by createdAt descending (_id breaks ties).
func (r *postRepo) ListPosts(ctx context.Context, opts repository.ListOptions) ([]model.Post, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := (*Store)(r).opContext(ctx)
	defer cancel()

	cursor, err := r.posts.Find(ctx, bson.D{},
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
			SetSkip(int64(offset)).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("mongodb: listing posts: %w", err)
	}

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decoding posts: %w", err)
	}

	posts := make([]model.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toModel())
	}
	return posts, nil
}

func (r *postRepo) CountPosts(ctx context.Context) (int64, error) {
	ctx, cancel := (*Store)(r).opContext(ctx)
	defer cancel()

	n, err := r.posts.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("mongodb: counting posts: %w", err)
	}
	return n, nil
}

// AddLike pushes userID only if it is not already in the set.
//
// The filter {likes: {$ne: user}} and the $addToSet run as one atomic
// document update. No match means either the post is missing or the user
// already likes it; a follow-up read by id tells the two apart.
func (r *postRepo) AddLike(ctx context.Context, postID, userID string) (*model.Post, bool, error) {
	return r.updateLikes(ctx, postID, userID, "$ne", "$addToSet")
}

// RemoveLike pulls userID only if it is in the set.
func (r *postRepo) RemoveLike(ctx context.Context, postID, userID string) (*model.Post, bool, error) {
	return r.updateLikes(ctx, postID, userID, "$eq", "$pull")
}

func (r *postRepo) updateLikes(ctx context.Context, postID, userID, match, op string) (*model.Post, bool, error) {
	pid, ok := objectID(postID)
	if !ok {
		return nil, false, apperror.NotFound("post", postID)
	}
	uid, ok := objectID(userID)
	if !ok {
		return nil, false, fmt.Errorf("mongodb: invalid user id %q", userID)
	}

	filter := bson.D{
		{Key: "_id", Value: pid},
		{Key: "likes", Value: bson.D{{Key: match, Value: uid}}},
	}
	update := bson.D{
		{Key: op, Value: bson.D{{Key: "likes", Value: uid}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: now()}}},
	}

	post, err := r.findOneAndUpdate(ctx, filter, update)
	if err == nil {
		return post, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, fmt.Errorf("mongodb: updating likes of post %s: %w", postID, err)
	}

	post, err = r.GetPostByID(ctx, postID)
	if err != nil {
		return nil, false, err
	}
	return post, false, nil
}

// AddComment $pushes a new embedded comment and returns the updated post.
func (r *postRepo) AddComment(ctx context.Context, postID string, comment *model.Comment) (*model.Post, error) {
	pid, ok := objectID(postID)
	if !ok {
		return nil, apperror.NotFound("post", postID)
	}
	author, ok := objectID(comment.AuthorID)
	if !ok {
		return nil, fmt.Errorf("mongodb: invalid comment author id %q", comment.AuthorID)
	}

	t := now()
	doc := commentDocument{
		ID:        bson.NewObjectID(),
		Author:    author,
		Content:   comment.Content,
		CreatedAt: t,
	}

	post, err := r.findOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: pid}},
		bson.D{
			{Key: "$push", Value: bson.D{{Key: "comments", Value: doc}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: t}}},
		},
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("post", postID)
		}
		return nil, fmt.Errorf("mongodb: adding comment to post %s: %w", postID, err)
	}

	comment.ID = doc.ID.Hex()
	comment.CreatedAt = t
	return post, nil
}

func (r *postRepo) DeletePost(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return apperror.NotFound("post", id)
	}

	ctx, cancel := (*Store)(r).opContext(ctx)
	defer cancel()

	res, err := r.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("mongodb: deleting post %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return apperror.NotFound("post", id)
	}
	return nil
}

// findOneAndUpdate applies update and decodes the document as it is AFTER
// the update. mongo.ErrNoDocuments is returned unwrapped.
func (r *postRepo) findOneAndUpdate(ctx context.Context, filter, update bson.D) (*model.Post, error) {
	ctx, cancel := (*Store)(r).opContext(ctx)
	defer cancel()

	var doc postDocument
	err := r.posts.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, err
	}

	p := doc.toModel()
	return &p, nil
}
