package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-library-service/internal/domain"
)

var citationColumnNames = []string{
	"id", "user_id", "citing_paper_id", "cited_paper_id", "relevance_score",
	"is_influential", "citation_context", "citation_depth", "parsed_authors",
	"parsed_title", "parsed_year", "parsing_confidence", "created_at",
}

func citationRowValues(c *domain.Citation) []interface{} {
	return []interface{}{
		c.ID, c.UserID, c.CitingPaperID, c.CitedPaperID, c.RelevanceScore,
		c.IsInfluential, c.Context, c.Depth, c.ParsedAuthors,
		c.ParsedTitle, c.ParsedYear, c.ParsingConfidence, c.CreatedAt,
	}
}

func newTestCitation(userID uuid.UUID) *domain.Citation {
	return &domain.Citation{
		ID:             uuid.New(),
		UserID:         userID,
		CitingPaperID:  uuid.New(),
		CitedPaperID:   uuid.New(),
		RelevanceScore: floatPtr(0.9),
		IsInfluential:  true,
		Context:        "as shown by",
		Depth:          1,
		CreatedAt:      time.Now().UTC(),
	}
}

func anyArgs(n int) []interface{} {
	args := make([]interface{}, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestPgCitationRepository_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("creates edge between owned papers", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		c := newTestCitation(userID)
		c.Depth = 0
		id := uuid.New()

		mock.ExpectQuery("INSERT INTO citations").
			WithArgs(userID, c.CitingPaperID, c.CitedPaperID, c.RelevanceScore, true,
				c.Context, 1, c.ParsedAuthors, c.ParsedTitle, c.ParsedYear, c.ParsingConfidence).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(id, time.Now()))

		result, err := NewPgCitationRepository(mock).Create(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, id, result.ID)
		assert.Equal(t, 1, result.Depth)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign paper yields not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("INSERT INTO citations").
			WithArgs(anyArgs(11)...).
			WillReturnError(pgx.ErrNoRows)

		_, err = NewPgCitationRepository(mock).Create(ctx, newTestCitation(userID))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("duplicate edge yields already exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("INSERT INTO citations").
			WithArgs(anyArgs(11)...).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "citations_edge_key"})

		_, err = NewPgCitationRepository(mock).Create(ctx, newTestCitation(userID))
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("relevance check violation names the field", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("INSERT INTO citations").
			WithArgs(anyArgs(11)...).
			WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "citations_relevance_score_check"})

		_, err = NewPgCitationRepository(mock).Create(ctx, newTestCitation(userID))
		var ve *domain.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "relevanceScore", ve.Field)
	})
}

func TestPgCitationRepository_ListReferences(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	focal := uuid.New()
	c := newTestCitation(userID)
	c.CitingPaperID = focal
	cited := newTestPaper(userID)
	cited.ID = c.CitedPaperID

	columns := append(append(append([]string{}, citationColumnNames...), paperColumnNames...), "has_pdf")
	values := append(append(citationRowValues(c), paperRowValues(cited)...), true)

	mock.ExpectQuery("FROM citations c\\s+JOIN papers p ON p.id = c.cited_paper_id").
		WithArgs(focal, userID).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(values...))

	refs, err := NewPgCitationRepository(mock).ListReferences(ctx, userID, focal)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, c.ID, refs[0].Citation.ID)
	assert.Equal(t, cited.ID, refs[0].Paper.ID)
	assert.Equal(t, 90000, refs[0].Paper.CitationCount)
	assert.True(t, refs[0].HasPDF)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCitationRepository_ListEdgesTouching(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("empty frontier skips the query", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		edges, err := NewPgCitationRepository(mock).ListEdgesTouching(ctx, userID, nil)
		require.NoError(t, err)
		assert.Empty(t, edges)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns edges in loader order", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		a, b, c := uuid.New(), uuid.New(), uuid.New()
		frontier := []uuid.UUID{a}

		mock.ExpectQuery("citing_paper_id = ANY\\(\\$2\\) OR c.cited_paper_id = ANY\\(\\$2\\)").
			WithArgs(userID, frontier).
			WillReturnRows(pgxmock.NewRows([]string{"citing_paper_id", "cited_paper_id"}).
				AddRow(a, b).
				AddRow(c, a))

		edges, err := NewPgCitationRepository(mock).ListEdgesTouching(ctx, userID, frontier)
		require.NoError(t, err)
		assert.Equal(t, []domain.CitationEdge{{Source: a, Target: b}, {Source: c, Target: a}}, edges)
	})

	t.Run("query failure is wrapped", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery("FROM citations c").
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("connection refused"))

		_, err = NewPgCitationRepository(mock).ListEdgesTouching(ctx, userID, []uuid.UUID{uuid.New()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list citation edges")
	})
}

func TestPgCitationRepository_Update(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := newTestCitation(uuid.New())
	mock.ExpectExec("UPDATE citations SET").
		WithArgs(anyArgs(10)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, NewPgCitationRepository(mock).Update(ctx, c), domain.ErrNotFound)
}
