package stt

// LocalConfig holds configuration for the local whisper.cpp STT backend.
type LocalConfig struct {
	BaseURL string // default: "http://localhost:8178"
	Model   string
}

// Local wraps OpenAI pointing at a local whisper.cpp server started with
// its OpenAI-compatible route, e.g.
// ./server -m models/ggml-base.en.bin --port 8178 --inference-path /v1/audio/transcriptions
type Local struct {
	*OpenAI
}

func NewLocal(cfg LocalConfig) *Local {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:8178"
	}
	return &Local{
		OpenAI: NewOpenAI(OpenAIConfig{
			BaseURL: baseURL + "/v1",
			Model:   cfg.Model,
		}),
	}
}

func (l *Local) Name() string { return "local-whisper" }
