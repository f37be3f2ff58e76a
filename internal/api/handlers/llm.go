package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/voicepost/internal/llm"
)

type ModelLister interface {
	ListModels() []llm.ModelInfo
}

type LLMHandler struct {
	models ModelLister
}

func NewLLMHandler(models ModelLister) *LLMHandler {
	return &LLMHandler{models: models}
}

func (h *LLMHandler) Models(w http.ResponseWriter, r *http.Request) {
	models := h.models.ListModels()
	if models == nil {
		models = []llm.ModelInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": models})
}
