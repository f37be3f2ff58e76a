package blog

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/voicepost/internal/llm"
	"github.com/nikhilbhutani/voicepost/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryPosts struct {
	recent    []string
	recentErr error
	createErr error
	created   []models.Post
	gotLimit  int
}

func (m *memoryPosts) Create(_ context.Context, userID uuid.UUID, title, content string) (*models.Post, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	p := models.Post{ID: uuid.New(), UserID: userID, Title: title, Content: content, CreatedAt: time.Now()}
	m.created = append(m.created, p)
	return &p, nil
}

func (m *memoryPosts) RecentContents(_ context.Context, _ uuid.UUID, limit int) ([]string, error) {
	m.gotLimit = limit
	return m.recent, m.recentErr
}

type fakeGenerator struct {
	content   string
	err       error
	calls     int
	gotPosts  string
	gotSource string
}

func (f *fakeGenerator) Generate(_ context.Context, _ uuid.UUID, transcription, userPosts string) (string, error) {
	f.calls++
	f.gotSource = transcription
	f.gotPosts = userPosts
	return f.content, f.err
}

type recordingPages struct {
	paths []string
	err   error
}

func (r *recordingPages) Revalidate(_ context.Context, path string) error {
	r.paths = append(r.paths, path)
	return r.err
}

type recordingEvents struct {
	events []string
}

func (r *recordingEvents) Dispatch(_ context.Context, _ uuid.UUID, event string, _ any) error {
	r.events = append(r.events, event)
	return nil
}

func TestGenerateBlogPostSuccess(t *testing.T) {
	posts := &memoryPosts{recent: []string{"newest", "middle", "oldest"}}
	gen := &fakeGenerator{content: "# Hello World\n\nIntro paragraph."}
	pages := &recordingPages{}
	events := &recordingEvents{}
	svc := NewService(posts, gen, pages, events, 3)
	userID := uuid.New()

	out, err := svc.GenerateBlogPost(context.Background(), userID, &models.Transcription{Text: "I said hello"})
	require.NoError(t, err)

	assert.True(t, out.Success)
	require.NotNil(t, out.PostID)
	require.Len(t, posts.created, 1)

	stored := posts.created[0]
	assert.Equal(t, *out.PostID, stored.ID)
	assert.Equal(t, userID, stored.UserID)
	assert.Equal(t, "Hello World", stored.Title)
	assert.Equal(t, gen.content, stored.Content)

	assert.Equal(t, "/posts/"+stored.ID.String(), out.RedirectPath)
	assert.Equal(t, []string{out.RedirectPath}, pages.paths)
	assert.Equal(t, []string{EventPostCreated}, events.events)

	assert.Equal(t, 3, posts.gotLimit)
	assert.Equal(t, "newest\n\nmiddle\n\noldest", gen.gotPosts)
	assert.Equal(t, "I said hello", gen.gotSource)
}

func TestGenerateBlogPostWithoutHistory(t *testing.T) {
	posts := &memoryPosts{}
	gen := &fakeGenerator{content: "First Post\n\nBody"}
	svc := NewService(posts, gen, nil, nil, 0)

	out, err := svc.GenerateBlogPost(context.Background(), uuid.New(), &models.Transcription{Text: "hi"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "", gen.gotPosts)
	assert.Equal(t, 3, posts.gotLimit)
}

func TestGenerateBlogPostRequiresTranscription(t *testing.T) {
	for _, tr := range []*models.Transcription{nil, {Text: ""}, {Text: "  \n"}} {
		posts := &memoryPosts{}
		gen := &fakeGenerator{content: "x"}
		svc := NewService(posts, gen, nil, nil, 3)

		out, err := svc.GenerateBlogPost(context.Background(), uuid.New(), tr)
		assert.ErrorIs(t, err, ErrTranscriptionRequired)
		assert.Nil(t, out)
		assert.Zero(t, gen.calls)
		assert.Empty(t, posts.created)
	}
}

func TestGenerateBlogPostCompletionFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{name: "api error", gen: &fakeGenerator{err: errors.New("rate limited")}},
		{name: "empty content", gen: &fakeGenerator{content: ""}},
		{name: "blank content", gen: &fakeGenerator{content: " \n "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := &memoryPosts{}
			pages := &recordingPages{}
			svc := NewService(posts, tt.gen, pages, nil, 3)

			out, err := svc.GenerateBlogPost(context.Background(), uuid.New(), &models.Transcription{Text: "talk"})
			require.NoError(t, err)
			assert.False(t, out.Success)
			assert.Equal(t, MsgGenerationFailed, out.Message)
			assert.Nil(t, out.PostID)
			assert.Empty(t, out.RedirectPath)
			assert.Empty(t, posts.created)
			assert.Empty(t, pages.paths)
		})
	}
}

func TestGenerateBlogPostStoreErrors(t *testing.T) {
	t.Run("reading posts", func(t *testing.T) {
		gen := &fakeGenerator{content: "x"}
		svc := NewService(&memoryPosts{recentErr: assert.AnError}, gen, nil, nil, 3)

		_, err := svc.GenerateBlogPost(context.Background(), uuid.New(), &models.Transcription{Text: "talk"})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Zero(t, gen.calls)
	})

	t.Run("saving post", func(t *testing.T) {
		pages := &recordingPages{}
		svc := NewService(&memoryPosts{createErr: assert.AnError}, &fakeGenerator{content: "T\n\nB"}, pages, nil, 3)

		_, err := svc.GenerateBlogPost(context.Background(), uuid.New(), &models.Transcription{Text: "talk"})
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "save post")
		assert.Empty(t, pages.paths)
	})
}

func TestGenerateBlogPostIgnoresRevalidateError(t *testing.T) {
	pages := &recordingPages{err: errors.New("redis down")}
	svc := NewService(&memoryPosts{}, &fakeGenerator{content: "T\n\nB"}, pages, nil, 3)

	out, err := svc.GenerateBlogPost(context.Background(), uuid.New(), &models.Transcription{Text: "talk"})
	require.NoError(t, err)
	assert.True(t, out.Success)
}

type stubGateway struct {
	resp *llm.ChatResponse
	err  error
	got  llm.ChatRequest
}

func (s *stubGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.got = req
	return s.resp, s.err
}

func (s *stubGateway) Provider(string) (llm.Provider, error) { return nil, errors.New("unused") }

func (s *stubGateway) ListModels() []llm.ModelInfo { return nil }

type recordingUsage struct {
	records []models.LLMUsageLog
}

func (r *recordingUsage) LogLLMUsage(_ context.Context, rec models.LLMUsageLog) error {
	r.records = append(r.records, rec)
	return nil
}

func TestGeneratorBuildsPrompt(t *testing.T) {
	gw := &stubGateway{resp: &llm.ChatResponse{Provider: "openai", Model: "gpt-4o-mini", Content: "Title\n\nBody", TotalTokens: 42}}
	usage := &recordingUsage{}
	g := NewGenerator(gw, GeneratorConfig{Provider: "openai", Model: "gpt-4o-mini", Temperature: 0.7, MaxTokens: 1000}, usage)
	userID := uuid.New()

	content, err := g.Generate(context.Background(), userID, "the transcript", "post one\n\npost two")
	require.NoError(t, err)
	assert.Equal(t, "Title\n\nBody", content)

	assert.Equal(t, "gpt-4o-mini", gw.got.Model)
	assert.Equal(t, 0.7, gw.got.Temperature)
	assert.Equal(t, 1000, gw.got.MaxTokens)
	require.Len(t, gw.got.Messages, 2)
	assert.Equal(t, llm.RoleSystem, gw.got.Messages[0].Role)
	assert.Contains(t, gw.got.Messages[0].Content, "skilled content writer")

	user := gw.got.Messages[1]
	assert.Equal(t, llm.RoleUser, user.Role)
	assert.Contains(t, user.Content, "post one\n\npost two")
	assert.True(t, strings.HasSuffix(user.Content, "Here's the transcription to convert: the transcript"))

	require.Len(t, usage.records, 1)
	assert.Equal(t, userID, *usage.records[0].UserID)
	assert.Equal(t, 42, usage.records[0].TotalTokens)
	assert.Equal(t, "blog.generate", usage.records[0].Endpoint)
}

func TestGeneratorDoesNotRescanTranscription(t *testing.T) {
	gw := &stubGateway{resp: &llm.ChatResponse{Content: "x"}}
	g := NewGenerator(gw, GeneratorConfig{}, nil)

	_, err := g.Generate(context.Background(), uuid.New(), "say {{user_posts}} out loud", "")
	require.NoError(t, err)
	assert.Contains(t, gw.got.Messages[1].Content, "say {{user_posts}} out loud")
}

func TestGeneratorEstimatesMissingUsage(t *testing.T) {
	gw := &stubGateway{resp: &llm.ChatResponse{Content: "Title\n\nA short body."}}
	usage := &recordingUsage{}
	g := NewGenerator(gw, GeneratorConfig{}, usage)

	_, err := g.Generate(context.Background(), uuid.New(), "transcript", "")
	require.NoError(t, err)
	require.Len(t, usage.records, 1)
	rec := usage.records[0]
	assert.Positive(t, rec.InputTokens)
	assert.Positive(t, rec.OutputTokens)
	assert.Equal(t, rec.InputTokens+rec.OutputTokens, rec.TotalTokens)
}

func TestGeneratorWrapsGatewayError(t *testing.T) {
	g := NewGenerator(&stubGateway{err: assert.AnError}, GeneratorConfig{}, nil)
	_, err := g.Generate(context.Background(), uuid.New(), "t", "")
	assert.ErrorIs(t, err, assert.AnError)
}
