package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-library-service/internal/domain"
)

func TestPgSummaryRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	userID, paperID := uuid.New(), uuid.New()

	t.Run("nil findings are stored as an empty array", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := uuid.New()
		now := time.Now()
		mock.ExpectQuery("(?s)INSERT INTO ai_summaries.+ON CONFLICT \\(paper_id\\) DO UPDATE").
			WithArgs(userID, paperID, "short", []string{}, "claude").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(id, now, now))

		s, err := NewPgSummaryRepository(mock).Upsert(ctx, &domain.AiSummary{
			UserID: userID, PaperID: paperID, Summary: "short", Model: "claude",
		})
		require.NoError(t, err)
		assert.Equal(t, id, s.ID)
		assert.NotNil(t, s.KeyFindings)
	})

	t.Run("foreign paper is not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("INSERT INTO ai_summaries").
			WithArgs(anyArgs(5)...).
			WillReturnError(pgx.ErrNoRows)

		_, err = NewPgSummaryRepository(mock).Upsert(ctx, &domain.AiSummary{UserID: userID, PaperID: paperID})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPgSummaryRepository_GetForPaper(t *testing.T) {
	ctx := context.Background()
	userID, paperID := uuid.New(), uuid.New()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("FROM ai_summaries WHERE paper_id = \\$1 AND user_id = \\$2").
		WithArgs(paperID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "paper_id", "summary", "key_findings", "model", "created_at", "updated_at"}).
			AddRow(uuid.New(), userID, paperID, "text", []string{"a", "b"}, "gpt", now, now))

	s, err := NewPgSummaryRepository(mock).GetForPaper(ctx, userID, paperID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.KeyFindings)
}
