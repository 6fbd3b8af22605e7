// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. The `json:"..."` tags control
// how each struct is serialized in API responses.
package model

import "time"

// User represents a registered account.
//
// IDs are plain strings at this layer. Each store decides what they look
// like (an ObjectID hex string in Mongo, an xid in SQLite); nothing above the
// repository parses them.
//
// PasswordHash is tagged `json:"-"` so it can never leak into a response,
// even if a handler accidentally encodes the full record.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"` // case-sensitive, unique
	PasswordHash string    `json:"-"`
	Bio          string    `json:"bio"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the view of a User returned to its owner: everything except
// the password hash.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSummary is the view of a User shown to other people (GET /users/{id}).
// It omits the email address.
type UserSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the owner's view of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

// Summary returns the view of u shown to other users.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

// ProfileUpdate is a partial profile change. A nil field is left untouched;
// a non-nil pointer to "" is a real value (an empty bio clears it).
type ProfileUpdate struct {
	Name *string
	Bio  *string
}

// IsEmpty reports whether the update changes nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Bio == nil
}
