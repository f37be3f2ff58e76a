package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikhilbhutani/voicepost/internal/auth"
	"github.com/nikhilbhutani/voicepost/internal/blog"
	"github.com/nikhilbhutani/voicepost/internal/cache"
	"github.com/nikhilbhutani/voicepost/internal/models"
	"github.com/nikhilbhutani/voicepost/internal/post"
	"github.com/nikhilbhutani/voicepost/internal/queue"
)

type BlogGenerator interface {
	GenerateBlogPost(ctx context.Context, userID uuid.UUID, t *models.Transcription) (*blog.Outcome, error)
}

type PostReader interface {
	GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Post, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Post, error)
}

type PageCache interface {
	GetPage(ctx context.Context, path string, dest any) error
	SetPage(ctx context.Context, path string, value any) error
}

type BlogEnqueuer interface {
	EnqueueBlogGenerate(ctx context.Context, payload queue.BlogGeneratePayload) (string, error)
}

type PostHandler struct {
	blogs BlogGenerator
	posts PostReader
	pages PageCache
	jobs  BlogEnqueuer
}

// NewPostHandler creates the post handler. pages and jobs may be nil when
// Redis is not configured.
func NewPostHandler(blogs BlogGenerator, posts PostReader, pages PageCache, jobs BlogEnqueuer) *PostHandler {
	return &PostHandler{blogs: blogs, posts: posts, pages: pages, jobs: jobs}
}

type generateRequest struct {
	Transcriptions *models.Transcription `json:"transcriptions"`
}

// Create generates and stores a post, then redirects to it.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := h.blogs.GenerateBlogPost(r.Context(), auth.UserIDFromContext(r.Context()), req.Transcriptions)
	if errors.Is(err, blog.ErrTranscriptionRequired) {
		writeJSON(w, http.StatusBadRequest, blog.Outcome{Success: false, Message: blog.MsgTranscriptionRequired})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create blog post")
		return
	}
	if !out.Success {
		writeJSON(w, http.StatusBadGateway, out)
		return
	}

	w.Header().Set("Location", out.RedirectPath)
	writeJSON(w, http.StatusSeeOther, out)
}

// CreateAsync queues generation and returns immediately.
func (h *PostHandler) CreateAsync(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "background generation is not available")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Transcriptions == nil || strings.TrimSpace(req.Transcriptions.Text) == "" {
		writeJSON(w, http.StatusBadRequest, blog.Outcome{Success: false, Message: blog.MsgTranscriptionRequired})
		return
	}

	taskID, err := h.jobs.EnqueueBlogGenerate(r.Context(), queue.BlogGeneratePayload{
		UserID: auth.UserIDFromContext(r.Context()).String(),
		Text:   req.Transcriptions.Text,
	})
	if err != nil {
		slog.Error("enqueue blog generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to queue blog post")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "task_id": taskID})
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	posts, err := h.posts.ListByUser(r.Context(), auth.UserIDFromContext(r.Context()), limit, offset)
	if err != nil {
		slog.Error("list posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"posts": posts, "count": len(posts)})
}

// Get serves /posts/{id}, from the page cache when it holds the post.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post ID")
		return
	}

	ctx := r.Context()
	userID := auth.UserIDFromContext(ctx)
	path := blog.PostPath(id)

	if h.pages != nil {
		var cached models.Post
		err := h.pages.GetPage(ctx, path, &cached)
		switch {
		case err == nil && cached.UserID == userID:
			writeJSON(w, http.StatusOK, cached)
			return
		case err == nil:
			writeError(w, http.StatusNotFound, post.ErrNotFound.Error())
			return
		case !errors.Is(err, cache.ErrMiss):
			slog.Warn("page cache read failed", "path", path, "error", err)
		}
	}

	p, err := h.posts.GetByID(ctx, id, userID)
	if errors.Is(err, post.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		slog.Error("get post failed", "post_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load post")
		return
	}

	if h.pages != nil {
		if err := h.pages.SetPage(ctx, path, p); err != nil {
			slog.Warn("page cache write failed", "path", path, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, p)
}
