package upload

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/voicepost/internal/models"
	"github.com/nikhilbhutani/voicepost/internal/storage"
)

// allowedExtensions maps the audio containers accepted by the
// transcription API to the content type stored with the object.
var allowedExtensions = map[string]string{
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".mp4":  "audio/mp4",
	".mpeg": "audio/mpeg",
	".mpga": "audio/mpeg",
	".oga":  "audio/ogg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
}

// File is an incoming upload as read from a multipart form.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        io.Reader
}

// Service stores audio files and describes them as an UploadResult.
type Service struct {
	storage  storage.Storage
	bucket   string
	maxBytes int64
}

func NewService(store storage.Storage, bucket string, maxBytes int64) *Service {
	return &Service{storage: store, bucket: bucket, maxBytes: maxBytes}
}

func (s *Service) Upload(ctx context.Context, userID uuid.UUID, f File) (*models.UploadResult, error) {
	if f.Size <= 0 {
		return nil, ErrEmptyFile
	}
	if s.maxBytes > 0 && f.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(f.Name))
	contentType, err := resolveContentType(ext, f.ContentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", userID, uuid.New(), ext)
	if err := s.storage.Upload(ctx, s.bucket, key, f.Data, contentType); err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	slog.Info("audio uploaded", "user_id", userID, "key", key, "size", f.Size)

	return &models.UploadResult{
		Name: filepath.Base(f.Name),
		Size: f.Size,
		Key:  key,
		URL:  s.storage.GetPublicURL(s.bucket, key),
	}, nil
}

// Open reads back an object stored by Upload for userID.
func (s *Service) Open(ctx context.Context, userID uuid.UUID, key string) (io.ReadCloser, error) {
	if !strings.HasPrefix(key, userID.String()+"/") {
		return nil, ErrForeignKey
	}
	rc, err := s.storage.Download(ctx, s.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("download from storage: %w", err)
	}
	return rc, nil
}

func resolveContentType(ext, declared string) (string, error) {
	if ct, ok := allowedExtensions[ext]; ok {
		return ct, nil
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err == nil && strings.HasPrefix(mediaType, "audio/") {
		return mediaType, nil
	}
	return "", ErrUnsupportedType
}
