package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nikhilbhutani/voicepost/internal/auth"
	"github.com/nikhilbhutani/voicepost/internal/models"
	"github.com/nikhilbhutani/voicepost/internal/webhook"
)

type WebhookService interface {
	Create(ctx context.Context, userID uuid.UUID, req webhook.CreateRequest) (*models.Webhook, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Webhook, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type WebhookHandler struct {
	svc WebhookService
}

func NewWebhookHandler(svc WebhookService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req webhook.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wh, err := h.svc.Create(r.Context(), auth.UserIDFromContext(r.Context()), req)
	if errors.Is(err, webhook.ErrInvalidURL) || errors.Is(err, webhook.ErrNoEvents) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("create webhook failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create webhook")
		return
	}

	// Secret is excluded from models.Webhook JSON and only shown here.
	writeJSON(w, http.StatusCreated, map[string]any{
		"webhook": wh,
		"secret":  wh.Secret,
	})
}

func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	webhooks, err := h.svc.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		slog.Error("list webhooks failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list webhooks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"webhooks": webhooks, "count": len(webhooks)})
}

func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook ID")
		return
	}

	err = h.svc.Delete(r.Context(), auth.UserIDFromContext(r.Context()), id)
	if errors.Is(err, webhook.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		slog.Error("delete webhook failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete webhook")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
