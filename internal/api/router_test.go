package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/voicepost/internal/auth"
	"github.com/nikhilbhutani/voicepost/internal/blog"
	"github.com/nikhilbhutani/voicepost/internal/config"
	"github.com/nikhilbhutani/voicepost/internal/llm"
	"github.com/nikhilbhutani/voicepost/internal/models"
	"github.com/nikhilbhutani/voicepost/internal/post"
	"github.com/nikhilbhutani/voicepost/internal/user"
)

const secret = "router-test-secret"

type users map[uuid.UUID]*models.User

func (u users) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if v, ok := u[id]; ok {
		return v, nil
	}
	return nil, user.ErrNotFound
}

// store is an in-memory post store that also runs blog.Service.
type store struct {
	posts map[uuid.UUID]models.Post
}

func (s *store) Create(_ context.Context, userID uuid.UUID, title, content string) (*models.Post, error) {
	p := models.Post{ID: uuid.New(), UserID: userID, Title: title, Content: content, CreatedAt: time.Now()}
	s.posts[p.ID] = p
	return &p, nil
}

func (s *store) RecentContents(context.Context, uuid.UUID, int) ([]string, error) {
	return nil, nil
}

func (s *store) GetByID(_ context.Context, id, userID uuid.UUID) (*models.Post, error) {
	p, ok := s.posts[id]
	if !ok || p.UserID != userID {
		return nil, post.ErrNotFound
	}
	return &p, nil
}

func (s *store) ListByUser(context.Context, uuid.UUID, int, int) ([]models.Post, error) {
	return []models.Post{}, nil
}

type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, _ uuid.UUID, transcription, _ string) (string, error) {
	return "# " + transcription + "\n\nBody.", nil
}

type noModels struct{}

func (noModels) ListModels() []llm.ModelInfo { return nil }

func newTestServer(t *testing.T) (*httptest.Server, *models.User) {
	t.Helper()
	u := &models.User{ID: uuid.New(), Email: "ana@example.com"}
	posts := &store{posts: map[uuid.UUID]models.Post{}}

	cfg := &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"*"}, RateLimitRPS: 100, RateLimitBurst: 100},
		Auth:   config.AuthConfig{JWTSecret: secret},
	}
	rt := NewRouter(cfg, Services{
		Users:  users{u.ID: u},
		Blogs:  blog.NewService(posts, echoGenerator{}, nil, nil, 3),
		Posts:  posts,
		Models: noModels{},
	})
	t.Cleanup(rt.Close)

	srv := httptest.NewServer(rt.Setup())
	t.Cleanup(srv.Close)
	return srv, u
}

func noRedirectClient() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
}

func TestHealthzIsPublic(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestAPIRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/api/v1/posts", "/api/v1/llm/models", "/posts/" + uuid.NewString()} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestCreatePostThenFollowRedirect(t *testing.T) {
	srv, u := newTestServer(t)
	token, err := auth.NewToken(secret, u.ID, time.Hour)
	require.NoError(t, err)
	client := noRedirectClient()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/posts", strings.NewReader(`{"transcriptions":{"text":"Cooking at home"}}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	location := resp.Header.Get("Location")
	assert.True(t, strings.HasPrefix(location, "/posts/"))

	req, _ = http.NewRequest(http.MethodGet, srv.URL+location, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAsyncWithoutQueue(t *testing.T) {
	srv, u := newTestServer(t)
	token, _ := auth.NewToken(secret, u.ID, time.Hour)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/posts/async", strings.NewReader(`{"transcriptions":{"text":"x"}}`))
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/posts", nil)
	req.Header.Set("Origin", "https://app.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
}
