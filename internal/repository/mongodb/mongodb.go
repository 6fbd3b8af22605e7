// Package mongodb implements the repository interfaces on MongoDB, the
// document store the API runs on in production.
//
// COLLECTIONS:
//
//	users  one document per account; unique index on email
//	posts  one document per post, with the like set and the comments embedded
//
// Likes and comments are changed with single atomic update operators
// ($addToSet/$pull with a membership filter, $push), so there is no
// read-modify-write window between two requests.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/sakif/yellowipe/internal/repository"
)

const (
	usersCollection = "users"
	postsCollection = "posts"

	// DefaultTimeout bounds every single store operation.
	DefaultTimeout = 10 * time.Second
)

// Config holds the connection settings.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Store owns the client connection and both collections.
type Store struct {
	client  *mongo.Client
	users   *mongo.Collection
	posts   *mongo.Collection
	timeout time.Duration
}

var _ repository.Store = (*Store)(nil)

// Open connects to MongoDB, verifies the connection and ensures indexes.
// The caller owns the returned Store and must Close it.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client, err := mongo.Connect(options.Client().
		ApplyURI(cfg.URI).
		SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connecting: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &Store{
		client:  client,
		users:   db.Collection(usersCollection),
		posts:   db.Collection(postsCollection),
		timeout: cfg.Timeout,
	}

	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

// Users returns the user repository.
func (s *Store) Users() repository.UserRepository { return (*userRepo)(s) }

// Posts returns the post repository.
func (s *Store) Posts() repository.PostRepository { return (*postRepo)(s) }

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb: pinging: %w", err)
	}
	return nil
}

// Close disconnects the client, waiting at most the operation timeout.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongodb: disconnecting: %w", err)
	}
	return nil
}

// Drop removes the whole database. Only the tests use it.
func (s *Store) Drop(ctx context.Context) error {
	return s.users.Database().Drop(ctx)
}

// ensureIndexes creates the indexes the queries rely on.
// Re-creating an index that already exists with the same keys and options is a no-op.
func (s *Store) ensureIndexes(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("mongodb: creating users indexes: %w", err)
	}

	_, err = s.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongodb: creating posts indexes: %w", err)
	}

	return nil
}

// opContext derives the per-operation context.
func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// objectID parses a hex id. ok is false for anything that is not a valid
// ObjectID; callers treat that as "not found".
func objectID(id string) (bson.ObjectID, bool) {
	oid, err := bson.ObjectIDFromHex(id)
	return oid, err == nil
}
