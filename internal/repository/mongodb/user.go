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

type userRepo Store

var _ repository.UserRepository = (*userRepo)(nil)

// userDocument is the stored shape of a user.
type userDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	Name      string        `bson:"name"`
	Email     string        `bson:"email"`
	Password  string        `bson:"password"` // bcrypt hash
	Bio       string        `bson:"bio"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func (d *userDocument) toModel() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Bio:          d.Bio,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// CreateUser inserts a user. The unique email index turns a concurrent
// duplicate into apperror.ErrDuplicateEmail.
func (r *userRepo) CreateUser(ctx context.Context, user *model.User) error {
	ctx, cancel := (*Store)(r).opContext(ctx)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond) // BSON dates are millisecond precision
	doc := userDocument{
		ID:        bson.NewObjectID(),
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.PasswordHash,
		Bio:       user.Bio,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := r.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.DuplicateEmail()
		}
		return fmt.Errorf("mongodb: inserting user: %w", err)
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, apperror.NotFound("user", id)
	}

	u, err := r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("mongodb: getting user %s: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := r.findOne(ctx, bson.D{{Key: "email", Value: email}})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "user not found"}
		}
		return nil, fmt.Errorf("mongodb: getting user by email: %w", err)
	}
	return u, nil
}

// GetUsersByIDs resolves many ids with a single $in query.
func (r *userRepo) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users := make(map[string]*model.User, len(ids))

	oids := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, ok := objectID(id); ok {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return users, nil
	}

	ctx, cancel := (*Store)(r).opContext(ctx)
	defer cancel()

	cursor, err := r.users.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}})
	if err != nil {
		return nil, fmt.Errorf("mongodb: finding users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb: decoding users: %w", err)
	}

	for i := range docs {
		u := docs[i].toModel()
		users[u.ID] = u
	}
	return users, nil
}

// UpdateProfile $sets only the supplied fields and returns the new document.
func (r *userRepo) UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, apperror.NotFound("user", id)
	}

	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}
	if update.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *update.Name})
	}
	if update.Bio != nil {
		set = append(set, bson.E{Key: "bio", Value: *update.Bio})
	}

	ctx, cancel := (*Store)(r).opContext(ctx)
	defer cancel()

	var doc userDocument
	err := r.users.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("mongodb: updating user %s: %w", id, err)
	}

	return doc.toModel(), nil
}

func (r *userRepo) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	ctx, cancel := (*Store)(r).opContext(ctx)
	defer cancel()

	var doc userDocument
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}
