package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/nikhilbhutani/voicepost/internal/blog"
	"github.com/nikhilbhutani/voicepost/internal/models"
	"github.com/nikhilbhutani/voicepost/internal/queue"
)

type BlogGenerator interface {
	GenerateBlogPost(ctx context.Context, userID uuid.UUID, t *models.Transcription) (*blog.Outcome, error)
}

// BlogWorker runs blog generation for transcriptions submitted through
// the async endpoint.
type BlogWorker struct {
	blogs BlogGenerator
}

func NewBlogWorker(blogs BlogGenerator) *BlogWorker {
	return &BlogWorker{blogs: blogs}
}

func (w *BlogWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.BlogGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return fmt.Errorf("parse user ID: %v: %w", err, asynq.SkipRetry)
	}

	slog.Info("generating blog post", "user_id", userID)

	out, err := w.blogs.GenerateBlogPost(ctx, userID, &models.Transcription{Text: payload.Text})
	if errors.Is(err, blog.ErrTranscriptionRequired) {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		return fmt.Errorf("generate blog post: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("%s: %w", out.Message, asynq.SkipRetry)
	}

	slog.Info("blog post generated", "user_id", userID, "post_id", out.PostID, "path", out.RedirectPath)
	return nil
}
