package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		limit     int
		wantPages int64
	}{
		{"empty", 0, 10, 0},
		{"exact fit", 20, 10, 2},
		{"partial last page", 15, 10, 2},
		{"single item", 1, 10, 1},
		{"limit one", 3, 1, 3},
		{"zero limit guards division", 5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(1, tt.limit, tt.total)
			assert.Equal(t, tt.wantPages, p.Pages)
			assert.Equal(t, tt.total, p.Total)
		})
	}
}

func TestPostLikedBy(t *testing.T) {
	p := Post{Likes: []string{"u1", "u2"}}
	assert.True(t, p.LikedBy("u2"))
	assert.False(t, p.LikedBy("u3"))
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	u := User{ID: "u1", Name: "Ana", Email: "ana@example.com", PasswordHash: "$2a$04$secret"}

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.NotContains(t, string(raw), "password")
}

func TestUserSummaryOmitsEmail(t *testing.T) {
	u := User{ID: "u1", Name: "Ana", Email: "ana@example.com", Bio: "hi"}

	raw, err := json.Marshal(u.Summary())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "ana@example.com")
	assert.Contains(t, string(raw), `"bio":"hi"`)
}

func TestProfileUpdateIsEmpty(t *testing.T) {
	empty := ""
	assert.True(t, ProfileUpdate{}.IsEmpty())
	assert.False(t, ProfileUpdate{Bio: &empty}.IsEmpty())
}
