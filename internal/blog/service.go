package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/voicepost/internal/models"
)

const (
	MsgGenerationFailed      = "Blog post generation failed, please try again..."
	MsgCreated               = "Blog post created"
	MsgTranscriptionRequired = "Transcription is required"

	EventPostCreated = "post.created"
)

// ErrTranscriptionRequired is returned when the transcription text is
// missing or blank. Nothing is generated or stored.
var ErrTranscriptionRequired = errors.New("transcription is required")

type PostStore interface {
	Create(ctx context.Context, userID uuid.UUID, title, content string) (*models.Post, error)
	RecentContents(ctx context.Context, userID uuid.UUID, limit int) ([]string, error)
}

type ContentGenerator interface {
	Generate(ctx context.Context, userID uuid.UUID, transcription, userPosts string) (string, error)
}

// PageRevalidator drops cached renderings of a page.
type PageRevalidator interface {
	Revalidate(ctx context.Context, path string) error
}

type EventPublisher interface {
	Dispatch(ctx context.Context, userID uuid.UUID, event string, payload any) error
}

// Outcome is the result of a generation attempt. RedirectPath is set only
// when a post was stored.
type Outcome struct {
	Success      bool       `json:"success"`
	Message      string     `json:"message"`
	PostID       *uuid.UUID `json:"postId,omitempty"`
	RedirectPath string     `json:"redirectPath,omitempty"`
}

type Service struct {
	posts       PostStore
	generator   ContentGenerator
	pages       PageRevalidator
	events      EventPublisher
	historySize int
}

// NewService creates the blog service. pages and events may be nil.
func NewService(posts PostStore, gen ContentGenerator, pages PageRevalidator, events EventPublisher, historySize int) *Service {
	if historySize <= 0 {
		historySize = 3
	}
	return &Service{
		posts:       posts,
		generator:   gen,
		pages:       pages,
		events:      events,
		historySize: historySize,
	}
}

// PostPath is the page a stored post is rendered at.
func PostPath(id uuid.UUID) string {
	return "/posts/" + id.String()
}

// GenerateBlogPost turns a transcription into a stored post styled after
// the user's most recent posts. A completion failure is reported as an
// unsuccessful Outcome; errors reading or writing posts are returned.
func (s *Service) GenerateBlogPost(ctx context.Context, userID uuid.UUID, t *models.Transcription) (*Outcome, error) {
	if t == nil || strings.TrimSpace(t.Text) == "" {
		return nil, ErrTranscriptionRequired
	}

	recent, err := s.posts.RecentContents(ctx, userID, s.historySize)
	if err != nil {
		slog.Error("error getting user blog posts", "user_id", userID, "error", err)
		return nil, fmt.Errorf("get user posts: %w", err)
	}

	content, err := s.generator.Generate(ctx, userID, t.Text, JoinPosts(recent))
	if err != nil {
		slog.Error("error generating blog post", "user_id", userID, "error", err)
		return &Outcome{Success: false, Message: MsgGenerationFailed}, nil
	}
	if strings.TrimSpace(content) == "" {
		slog.Error("completion returned no content", "user_id", userID)
		return &Outcome{Success: false, Message: MsgGenerationFailed}, nil
	}

	post, err := s.posts.Create(ctx, userID, ExtractTitle(content), content)
	if err != nil {
		slog.Error("error saving blog post", "user_id", userID, "error", err)
		return nil, fmt.Errorf("save post: %w", err)
	}

	path := PostPath(post.ID)
	if s.pages != nil {
		if err := s.pages.Revalidate(ctx, path); err != nil {
			slog.Warn("failed to revalidate post page", "path", path, "error", err)
		}
	}
	if s.events != nil {
		if err := s.events.Dispatch(ctx, userID, EventPostCreated, post); err != nil {
			slog.Warn("failed to dispatch post event", "post_id", post.ID, "error", err)
		}
	}

	slog.Info("blog post created", "user_id", userID, "post_id", post.ID)

	id := post.ID
	return &Outcome{Success: true, Message: MsgCreated, PostID: &id, RedirectPath: path}, nil
}
