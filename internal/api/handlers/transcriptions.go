package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/voicepost/internal/auth"
	"github.com/nikhilbhutani/voicepost/internal/models"
	"github.com/nikhilbhutani/voicepost/internal/transcription"
)

type Transcriber interface {
	TranscribeUploadedFile(ctx context.Context, userID uuid.UUID, upload *models.UploadResult) transcription.Result
}

type TranscriptionHandler struct {
	svc Transcriber
}

func NewTranscriptionHandler(svc Transcriber) *TranscriptionHandler {
	return &TranscriptionHandler{svc: svc}
}

// Create transcribes a previously uploaded file. The body is the
// UploadResult returned by the upload endpoint.
func (h *TranscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var upload *models.UploadResult
	if err := json.NewDecoder(r.Body).Decode(&upload); err != nil {
		upload = nil
	}

	res := h.svc.TranscribeUploadedFile(r.Context(), auth.UserIDFromContext(r.Context()), upload)
	writeJSON(w, transcriptionStatus(res), res)
}

func transcriptionStatus(res transcription.Result) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.Message == transcription.MsgUploadFailed:
		return http.StatusBadRequest
	case res.Message == transcription.MsgFileTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusBadGateway
	}
}
