package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// protected returns a RequireAuth-wrapped handler that echoes the userID it saw.
func protected(t *testing.T, ts *TokenService) http.Handler {
	t.Helper()
	return RequireAuth(ts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Error("handler reached without a userID in context")
		}
		w.Write([]byte(id))
	}))
}

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	valid, err := ts.Generate("user-42")
	require.NoError(t, err)
	expired, err := ts.GenerateWithDuration("user-42", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantBody    string
		wantMessage string
	}{
		{name: "valid bearer token", header: "Bearer " + valid, wantStatus: http.StatusOK, wantBody: "user-42"},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusOK, wantBody: "user-42"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantMessage: "access token required"},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "scheme only", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized, wantMessage: "invalid token"},
		{name: "expired token", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized, wantMessage: "token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			protected(t, ts).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			}
			if tt.wantStatus == http.StatusUnauthorized {
				var body map[string]string
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				assert.Equal(t, "unauthorized", body["error"])
				if tt.wantMessage != "" {
					assert.Equal(t, tt.wantMessage, body["message"])
				}
			}
		})
	}
}

func TestUserIDFromContext_Anonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := UserIDFromContext(req.Context())
	assert.False(t, ok)
}
