package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/voicepost/internal/auth"
	"github.com/nikhilbhutani/voicepost/internal/models"
	"github.com/nikhilbhutani/voicepost/internal/upload"
)

// multipartOverhead leaves room for form boundaries and headers on top of
// the file itself.
const multipartOverhead = 1 << 20

type Uploader interface {
	Upload(ctx context.Context, userID uuid.UUID, f upload.File) (*models.UploadResult, error)
}

type UploadHandler struct {
	svc      Uploader
	maxBytes int64
}

func NewUploadHandler(svc Uploader, maxBytes int64) *UploadHandler {
	return &UploadHandler{svc: svc, maxBytes: maxBytes}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, upload.ErrFileTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	res, err := h.svc.Upload(r.Context(), auth.UserIDFromContext(r.Context()), upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	})
	switch {
	case errors.Is(err, upload.ErrEmptyFile):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, upload.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, upload.ErrUnsupportedType):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case err != nil:
		slog.Error("upload failed", "error", err)
		writeError(w, http.StatusBadGateway, "failed to store file")
	default:
		writeJSON(w, http.StatusCreated, res)
	}
}
