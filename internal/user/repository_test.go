package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "full_name", "created_at"}).
			AddRow(id, "ana@example.com", "Ana", time.Now()))

	u, err := NewRepository(mock).GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)

	missing := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).WithArgs(missing).
		WillReturnError(pgx.ErrNoRows)
	_, err = NewRepository(mock).GetByID(context.Background(), missing)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
