package blog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/voicepost/internal/llm"
	"github.com/nikhilbhutani/voicepost/internal/models"
	"github.com/nikhilbhutani/voicepost/pkg/tokenizer"
)

// UsageRecorder persists token usage of completion calls.
type UsageRecorder interface {
	LogLLMUsage(ctx context.Context, record models.LLMUsageLog) error
}

type GeneratorConfig struct {
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Generator turns a transcription into Markdown using the completion API.
type Generator struct {
	gateway llm.Gateway
	cfg     GeneratorConfig
	usage   UsageRecorder
}

// NewGenerator creates a Generator. usage may be nil.
func NewGenerator(gw llm.Gateway, cfg GeneratorConfig, usage UsageRecorder) *Generator {
	return &Generator{gateway: gw, cfg: cfg, usage: usage}
}

// Generate returns the raw completion text. An empty string means the API
// answered without content.
func (g *Generator) Generate(ctx context.Context, userID uuid.UUID, transcription, userPosts string) (string, error) {
	messages, err := BuildMessages(transcription, userPosts)
	if err != nil {
		return "", err
	}

	resp, err := g.gateway.Chat(ctx, llm.ChatRequest{
		Provider:    g.cfg.Provider,
		Model:       g.cfg.Model,
		Messages:    messages,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate blog post: %w", err)
	}

	if resp.TotalTokens == 0 {
		// Local OpenAI-compatible servers often omit usage.
		resp.InputTokens = tokenizer.EstimateAll(messages[0].Content, messages[1].Content)
		resp.OutputTokens = tokenizer.Estimate(resp.Content)
		resp.TotalTokens = resp.InputTokens + resp.OutputTokens
		resp.CostUSD = llm.CalculateCost(resp.Model, resp.InputTokens, resp.OutputTokens)
	}

	if g.usage != nil {
		uid := userID
		record := models.LLMUsageLog{
			UserID:       &uid,
			Provider:     resp.Provider,
			Model:        resp.Model,
			InputTokens:  resp.InputTokens,
			OutputTokens: resp.OutputTokens,
			TotalTokens:  resp.TotalTokens,
			CostUSD:      resp.CostUSD,
			LatencyMs:    resp.LatencyMs,
			Endpoint:     "blog.generate",
		}
		if err := g.usage.LogLLMUsage(ctx, record); err != nil {
			slog.Warn("failed to record LLM usage", "error", err)
		}
	}

	return resp.Content, nil
}
