package post

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nikhilbhutani/voicepost/internal/database"
	"github.com/nikhilbhutani/voicepost/internal/models"
)

var ErrNotFound = errors.New("post not found")

const defaultListLimit = 20

type Repository struct {
	db database.DBTX
}

func NewRepository(db database.DBTX) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, userID uuid.UUID, title, content string) (*models.Post, error) {
	var p models.Post
	err := r.db.QueryRow(ctx,
		`INSERT INTO posts (user_id, title, content) VALUES ($1, $2, $3)
		 RETURNING id, user_id, title, content, created_at`,
		userID, title, content,
	).Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return &p, nil
}

// RecentContents returns the bodies of the user's newest posts, newest
// first. Posts created in the same instant are ordered by id.
func (r *Repository) RecentContents(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT content FROM posts WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	defer rows.Close()

	var contents []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan post content: %w", err)
		}
		contents = append(contents, c)
	}
	return contents, rows.Err()
}

// GetByID returns the post only if it belongs to userID.
func (r *Repository) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.Post, error) {
	var p models.Post
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, title, content, created_at FROM posts
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &p, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Post, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, title, content, created_at FROM posts
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Content, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
