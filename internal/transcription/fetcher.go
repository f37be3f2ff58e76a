package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/voicepost/internal/models"
	"github.com/nikhilbhutani/voicepost/internal/upload"
)

// Fetcher retrieves the bytes of an uploaded file.
type Fetcher interface {
	Fetch(ctx context.Context, userID uuid.UUID, file *models.UploadResult) (io.ReadCloser, error)
}

// HTTPFetcher downloads the file from its URL.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: 2 * time.Minute}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, _ uuid.UUID, file *models.UploadResult) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create fetch request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch upload: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch upload: unexpected status %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// ObjectOpener reads back objects stored by the upload service.
type ObjectOpener interface {
	Open(ctx context.Context, userID uuid.UUID, key string) (io.ReadCloser, error)
}

// StoredFetcher reads the user's own uploads straight from the bucket by
// key. Files without a key, or with a key outside the user's prefix, are
// fetched by URL.
type StoredFetcher struct {
	objects  ObjectOpener
	fallback Fetcher
}

func NewStoredFetcher(objects ObjectOpener, fallback Fetcher) *StoredFetcher {
	return &StoredFetcher{objects: objects, fallback: fallback}
}

func (f *StoredFetcher) Fetch(ctx context.Context, userID uuid.UUID, file *models.UploadResult) (io.ReadCloser, error) {
	if file.Key == "" {
		return f.fallback.Fetch(ctx, userID, file)
	}
	rc, err := f.objects.Open(ctx, userID, file.Key)
	if errors.Is(err, upload.ErrForeignKey) {
		return f.fallback.Fetch(ctx, userID, file)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch upload: %w", err)
	}
	return rc, nil
}
