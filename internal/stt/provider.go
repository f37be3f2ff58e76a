package stt

import (
	"context"
	"io"

	"github.com/nikhilbhutani/voicepost/internal/config"
)

// Request holds the audio to transcribe. FileName is sent with the audio
// so the API can infer the container format from its extension.
type Request struct {
	Audio    io.Reader
	FileName string
	Language string
	Prompt   string
}

// Response holds the transcription result.
type Response struct {
	Text     string  `json:"text"`
	Language string  `json:"language,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, req Request) (*Response, error)
	Name() string
}

// New builds the backend selected by cfg.Backend.
func New(cfg config.STTConfig) Provider {
	if cfg.Backend == "local" {
		return NewLocal(LocalConfig{BaseURL: cfg.LocalBaseURL, Model: cfg.OpenAIModel})
	}
	return NewOpenAI(OpenAIConfig{
		APIKey:  cfg.OpenAIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})
}
