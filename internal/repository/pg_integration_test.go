//go:build integration

package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-library-service/internal/analysis"
	"github.com/helixir/paper-library-service/internal/database/dbtest"
	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/repository"
)

func TestRepositories_Integration(t *testing.T) {
	db := dbtest.Start(t)
	ctx := context.Background()

	users := repository.NewPgUserRepository(db)
	papers := repository.NewPgPaperRepository(db)
	citations := repository.NewPgCitationRepository(db)
	tags := repository.NewPgTagRepository(db)

	newUser := func(t *testing.T, email string) uuid.UUID {
		t.Helper()
		u, err := users.Create(ctx, &domain.User{Email: email, PasswordHash: "x", DisplayName: email})
		require.NoError(t, err)
		return u.ID
	}
	newPaper := func(t *testing.T, userID uuid.UUID, title string, citationCount int) *domain.Paper {
		t.Helper()
		p, err := papers.Create(ctx, &domain.Paper{
			UserID:        userID,
			Title:         title,
			CitationCount: citationCount,
			ReadingStatus: domain.ReadingStatusToRead,
		})
		require.NoError(t, err)
		return p
	}
	cite := func(t *testing.T, userID uuid.UUID, from, to *domain.Paper, relevance float64) {
		t.Helper()
		_, err := citations.Create(ctx, &domain.Citation{
			UserID:         userID,
			CitingPaperID:  from.ID,
			CitedPaperID:   to.ID,
			RelevanceScore: &relevance,
			Depth:          1,
		})
		require.NoError(t, err)
	}

	owner := newUser(t, "owner@example.com")
	stranger := newUser(t, "stranger@example.com")

	a := newPaper(t, owner, "A", 10)
	b := newPaper(t, owner, "B", 500)
	c := newPaper(t, owner, "C", 0)
	cite(t, owner, a, b, 0.9)
	cite(t, owner, b, c, 0.4)

	service := analysis.NewService(papers, citations, nil, zerolog.Nop())

	t.Run("network of a chain at depth two", func(t *testing.T) {
		network, err := service.CitationNetwork(ctx, owner, a.ID, 2)
		require.NoError(t, err)

		require.Len(t, network.Nodes, 3)
		assert.Equal(t, a.ID, network.Nodes[0].ID)
		ids := []uuid.UUID{network.Nodes[0].ID, network.Nodes[1].ID, network.Nodes[2].ID}
		assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID, c.ID}, ids)
		assert.ElementsMatch(t, []analysis.Edge{
			{Source: a.ID, Target: b.ID},
			{Source: b.ID, Target: c.ID},
		}, network.Edges)
	})

	t.Run("middle paper sees citing and cited neighbours at depth one", func(t *testing.T) {
		network, err := service.CitationNetwork(ctx, owner, b.ID, 1)
		require.NoError(t, err)

		require.Len(t, network.Nodes, 3)
		assert.Equal(t, b.ID, network.Nodes[0].ID)
		assert.ElementsMatch(t, []analysis.Edge{
			{Source: a.ID, Target: b.ID},
			{Source: b.ID, Target: c.ID},
		}, network.Edges)
	})

	t.Run("depth one stops at direct neighbours", func(t *testing.T) {
		network, err := service.CitationNetwork(ctx, owner, a.ID, 1)
		require.NoError(t, err)
		assert.Len(t, network.Nodes, 2)
		assert.Equal(t, []analysis.Edge{{Source: a.ID, Target: b.ID}}, network.Edges)
	})

	t.Run("another user cannot see the network", func(t *testing.T) {
		_, err := service.CitationNetwork(ctx, stranger, a.ID, 2)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("references are ranked with the cited paper's citation count", func(t *testing.T) {
		result, err := service.AnalyzeReferences(ctx, owner, a.ID, analysis.DefaultRankOptions())
		require.NoError(t, err)
		require.Len(t, result.TopReferences, 1)
		ref := result.TopReferences[0].Reference
		assert.Equal(t, b.ID, ref.Paper.ID)
		assert.Equal(t, 500, ref.Paper.CitationCount)
		assert.False(t, ref.HasPDF)
		assert.Equal(t, 1, result.TotalReferences)
	})

	t.Run("duplicate edge is rejected", func(t *testing.T) {
		relevance := 0.5
		_, err := citations.Create(ctx, &domain.Citation{
			UserID: owner, CitingPaperID: a.ID, CitedPaperID: b.ID, RelevanceScore: &relevance, Depth: 1,
		})
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("edge to a foreign paper is rejected", func(t *testing.T) {
		foreign := newPaper(t, stranger, "Foreign", 0)
		_, err := citations.Create(ctx, &domain.Citation{
			UserID: owner, CitingPaperID: a.ID, CitedPaperID: foreign.ID, Depth: 1,
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("tag replacement commits atomically", func(t *testing.T) {
		ml, err := tags.Create(ctx, &domain.Tag{UserID: owner, Name: "ml", Color: domain.DefaultTagColor})
		require.NoError(t, err)
		nlp, err := tags.Create(ctx, &domain.Tag{UserID: owner, Name: "nlp", Color: domain.DefaultTagColor})
		require.NoError(t, err)

		err = db.WithTransaction(ctx, func(tx pgx.Tx) error {
			return repository.NewPgTagRepository(tx).ReplacePaperTags(ctx, owner, a.ID, []uuid.UUID{ml.ID, nlp.ID})
		})
		require.NoError(t, err)

		got, err := tags.ListForPaper(ctx, owner, a.ID)
		require.NoError(t, err)
		assert.Len(t, got, 2)

		err = db.WithTransaction(ctx, func(tx pgx.Tx) error {
			return repository.NewPgTagRepository(tx).ReplacePaperTags(ctx, owner, a.ID, []uuid.UUID{ml.ID, uuid.New()})
		})
		require.Error(t, err)

		got, err = tags.ListForPaper(ctx, owner, a.ID)
		require.NoError(t, err)
		assert.Len(t, got, 2, "failed replacement leaves the previous tags")
	})
}
