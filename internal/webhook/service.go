package webhook

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/voicepost/internal/database"
	"github.com/nikhilbhutani/voicepost/internal/models"
)

var (
	ErrNotFound   = errors.New("webhook not found")
	ErrInvalidURL = errors.New("webhook url must be an absolute http(s) url")
	ErrNoEvents   = errors.New("webhook must subscribe to at least one event")
)

type Service struct {
	db         database.DBTX
	dispatcher *Dispatcher
}

func NewService(db database.DBTX, dispatcher *Dispatcher) *Service {
	return &Service{db: db, dispatcher: dispatcher}
}

type CreateRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

func (r CreateRequest) validate() error {
	u, err := url.Parse(r.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidURL
	}
	if len(r.Events) == 0 {
		return ErrNoEvents
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*models.Webhook, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	secret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	eventsJSON, err := json.Marshal(req.Events)
	if err != nil {
		return nil, fmt.Errorf("marshal events: %w", err)
	}

	var wh models.Webhook
	err = s.db.QueryRow(ctx,
		`INSERT INTO webhooks (user_id, url, events, secret, is_active)
		 VALUES ($1, $2, $3, $4, true)
		 RETURNING id, user_id, url, events, is_active, created_at`,
		userID, req.URL, eventsJSON, secret,
	).Scan(&wh.ID, &wh.UserID, &wh.URL, &wh.Events, &wh.IsActive, &wh.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert webhook: %w", err)
	}

	// The secret is only ever returned here.
	wh.Secret = secret

	return &wh, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]models.Webhook, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, url, events, is_active, created_at
		 FROM webhooks WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	webhooks := []models.Webhook{}
	for rows.Next() {
		var wh models.Webhook
		if err := rows.Scan(&wh.ID, &wh.UserID, &wh.URL, &wh.Events, &wh.IsActive, &wh.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		webhooks = append(webhooks, wh)
	}
	return webhooks, rows.Err()
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM webhooks WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Dispatch queues event for every active webhook of the user subscribed
// to it. Delivery happens in the background.
func (s *Service) Dispatch(ctx context.Context, userID uuid.UUID, event string, payload any) error {
	eventJSON, err := json.Marshal([]string{event})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, url, secret FROM webhooks
		 WHERE user_id = $1 AND is_active = true AND events @> $2::jsonb`,
		userID, string(eventJSON),
	)
	if err != nil {
		return fmt.Errorf("find matching webhooks: %w", err)
	}
	defer rows.Close()

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	for rows.Next() {
		var req DeliveryRequest
		if err := rows.Scan(&req.WebhookID, &req.URL, &req.Secret); err != nil {
			return fmt.Errorf("scan webhook: %w", err)
		}
		req.Event = event
		req.Payload = payloadJSON

		if s.dispatcher != nil {
			s.dispatcher.Enqueue(req)
		}
	}
	return rows.Err()
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "whsec_" + hex.EncodeToString(b), nil
}
