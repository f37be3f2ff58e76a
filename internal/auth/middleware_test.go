package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/nikhilbhutani/voicepost/internal/models"
	"github.com/nikhilbhutani/voicepost/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type userMap map[uuid.UUID]*models.User

func (m userMap) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := m[id]; ok {
		return u, nil
	}
	return nil, user.ErrNotFound
}

type failingUsers struct{}

func (failingUsers) GetByID(context.Context, uuid.UUID) (*models.User, error) {
	return nil, assert.AnError
}

func serve(t *testing.T, users userMap, authHeader string) (*httptest.ResponseRecorder, *models.User) {
	t.Helper()
	var seen *models.User
	h := NewJWTMiddleware(testSecret, users).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r.Context())
		assert.Equal(t, seen.ID, UserIDFromContext(r.Context()))
		assert.NotNil(t, ClaimsFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

func TestAuthenticateValidToken(t *testing.T) {
	u := &models.User{ID: uuid.New(), Email: "ana@example.com"}
	token, err := NewToken(testSecret, u.ID, time.Hour)
	require.NoError(t, err)

	rec, seen := serve(t, userMap{u.ID: u}, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, u, seen)
}

func TestAuthenticateRejects(t *testing.T) {
	known := uuid.New()
	users := userMap{known: {ID: known}}

	valid, _ := NewToken(testSecret, known, time.Hour)
	expired, _ := NewToken(testSecret, known, -time.Minute)
	wrongKey, _ := NewToken("other-secret", known, time.Hour)
	unknownUser, _ := NewToken(testSecret, uuid.New(), time.Hour)
	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"},
	}).SignedString([]byte(testSecret))
	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: known.String()},
	}).SignedString([]byte(testSecret))

	tests := []struct {
		name    string
		header  string
		wantErr string
	}{
		{name: "no header", header: "", wantErr: "missing authorization token"},
		{name: "not bearer", header: "Basic " + valid, wantErr: "missing authorization token"},
		{name: "garbage", header: "Bearer abc.def", wantErr: "invalid token"},
		{name: "expired", header: "Bearer " + expired, wantErr: "token expired"},
		{name: "wrong key", header: "Bearer " + wrongKey, wantErr: "invalid token"},
		{name: "other algorithm", header: "Bearer " + hs512, wantErr: "invalid token"},
		{name: "bad subject", header: "Bearer " + badSubject, wantErr: "invalid user ID in token"},
		{name: "unknown user", header: "Bearer " + unknownUser, wantErr: "user not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, seen := serve(t, users, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, seen)
			assert.Equal(t, tt.wantErr, errorBody(t, rec))
		})
	}
}

func TestUserIDFromEmptyContext(t *testing.T) {
	assert.Equal(t, uuid.Nil, UserIDFromContext(context.Background()))
	assert.Nil(t, ClaimsFromContext(context.Background()))
}

func TestAuthenticateLookupFailure(t *testing.T) {
	token, err := NewToken(testSecret, uuid.New(), time.Hour)
	require.NoError(t, err)

	called := false
	h := NewJWTMiddleware(testSecret, failingUsers{}).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, called)
	assert.Equal(t, "failed to authenticate", errorBody(t, rec))
}
