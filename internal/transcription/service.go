package transcription

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/voicepost/internal/models"
	"github.com/nikhilbhutani/voicepost/internal/stt"
)

const (
	MsgUploadFailed    = "File upload failed"
	MsgUploaded        = "File uploaded successfully!"
	MsgFileTooLarge    = "File size exceeds the max limit of 20MB"
	MsgProcessingError = "Error processing file"
)

// Result is returned to the browser instead of an error.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *Data  `json:"data"`
}

type Data struct {
	Transcriptions models.Transcription `json:"transcriptions"`
	UserID         uuid.UUID            `json:"userId"`
}

type Service struct {
	fetcher Fetcher
	stt     stt.Provider
}

func NewService(fetcher Fetcher, provider stt.Provider) *Service {
	return &Service{fetcher: fetcher, stt: provider}
}

// TranscribeUploadedFile fetches the uploaded audio and sends it to the
// speech-to-text provider once. Failures are reported in the Result.
func (s *Service) TranscribeUploadedFile(ctx context.Context, userID uuid.UUID, upload *models.UploadResult) Result {
	if upload == nil || upload.URL == "" || upload.Name == "" {
		return Result{Success: false, Message: MsgUploadFailed}
	}

	audio, err := s.fetcher.Fetch(ctx, userID, upload)
	if err != nil {
		slog.Error("error fetching uploaded file", "error", err, "key", upload.Key)
		return failure(err)
	}
	defer audio.Close()

	resp, err := s.stt.Transcribe(ctx, stt.Request{Audio: audio, FileName: upload.Name})
	if err != nil {
		slog.Error("error processing file", "error", err, "provider", s.stt.Name(), "key", upload.Key, "size", upload.Size)
		if stt.StatusCode(err) == http.StatusRequestEntityTooLarge {
			return Result{Success: false, Message: MsgFileTooLarge}
		}
		return failure(err)
	}

	slog.Info("file transcribed", "user_id", userID, "key", upload.Key, "chars", len(resp.Text))

	return Result{
		Success: true,
		Message: MsgUploaded,
		Data: &Data{
			Transcriptions: models.Transcription{Text: resp.Text},
			UserID:         userID,
		},
	}
}

func failure(err error) Result {
	msg := stt.Message(err)
	if msg == "" {
		msg = MsgProcessingError
	}
	return Result{Success: false, Message: msg}
}
