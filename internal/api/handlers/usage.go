package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/voicepost/internal/audit"
	"github.com/nikhilbhutani/voicepost/internal/auth"
)

type UsageReader interface {
	GetUsageSummary(ctx context.Context, userID uuid.UUID, startDate, endDate *time.Time) ([]audit.UsageSummary, error)
}

type UsageHandler struct {
	usage UsageReader
}

func NewUsageHandler(usage UsageReader) *UsageHandler {
	return &UsageHandler{usage: usage}
}

// Usage reports the caller's completion usage. start_date and end_date are
// optional RFC 3339 timestamps.
func (h *UsageHandler) Usage(w http.ResponseWriter, r *http.Request) {
	startDate, err := parseTimeParam(r, "start_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date")
		return
	}
	endDate, err := parseTimeParam(r, "end_date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date")
		return
	}

	summary, err := h.usage.GetUsageSummary(r.Context(), auth.UserIDFromContext(r.Context()), startDate, endDate)
	if err != nil {
		slog.Error("usage summary failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load usage")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"usage": summary})
}

func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
