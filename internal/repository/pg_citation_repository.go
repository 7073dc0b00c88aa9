package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helixir/paper-library-service/internal/domain"
)

var _ CitationRepository = (*PgCitationRepository)(nil)

const citationColumns = `c.id, c.user_id, c.citing_paper_id, c.cited_paper_id, c.relevance_score,
	c.is_influential, c.citation_context, c.citation_depth, c.parsed_authors,
	c.parsed_title, c.parsed_year, c.parsing_confidence, c.created_at`

var citationConstraintFields = map[string]string{
	"citations_no_self":                  "citedPaperId",
	"citations_relevance_score_check":    "relevanceScore",
	"citations_parsing_confidence_check": "parsingConfidence",
	"citations_citation_depth_check":     "citationDepth",
	"citations_citing_paper_id_fkey":     "citingPaperId",
	"citations_cited_paper_id_fkey":      "citedPaperId",
}

// PgCitationRepository is a PostgreSQL implementation of CitationRepository.
type PgCitationRepository struct {
	db DBTX
}

// NewPgCitationRepository creates a new PostgreSQL citation repository.
func NewPgCitationRepository(db DBTX) *PgCitationRepository {
	return &PgCitationRepository{db: db}
}

// Create inserts an edge between two of the user's papers.
func (r *PgCitationRepository) Create(ctx context.Context, citation *domain.Citation) (*domain.Citation, error) {
	if citation.Depth == 0 {
		citation.Depth = 1
	}

	query := `
		INSERT INTO citations (
			user_id, citing_paper_id, cited_paper_id, relevance_score, is_influential,
			citation_context, citation_depth, parsed_authors, parsed_title, parsed_year,
			parsing_confidence
		)
		SELECT $1::uuid, $2::uuid, $3::uuid, $4::double precision, $5::boolean,
			$6::text, $7::integer, $8::text, $9::text, $10::integer, $11::double precision
		WHERE (SELECT COUNT(*) FROM papers WHERE user_id = $1 AND id IN ($2, $3)) = 2
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		citation.UserID,
		citation.CitingPaperID,
		citation.CitedPaperID,
		citation.RelevanceScore,
		citation.IsInfluential,
		citation.Context,
		citation.Depth,
		citation.ParsedAuthors,
		citation.ParsedTitle,
		citation.ParsedYear,
		citation.ParsingConfidence,
	).Scan(&citation.ID, &citation.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("paper", citation.CitingPaperID.String()+","+citation.CitedPaperID.String())
		}
		key := citation.CitingPaperID.String() + "->" + citation.CitedPaperID.String()
		return nil, translateWriteError(err, "insert citation", "citation", key, citationConstraintFields)
	}

	return citation, nil
}

// Get retrieves one of the user's citations.
func (r *PgCitationRepository) Get(ctx context.Context, userID, id uuid.UUID) (*domain.Citation, error) {
	query := `SELECT ` + citationColumns + ` FROM citations c WHERE c.id = $1 AND c.user_id = $2`

	c, err := scanCitation(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return nil, notFound(err, "get citation", "citation", id.String())
	}
	return c, nil
}

// Update persists every mutable field of citation.
func (r *PgCitationRepository) Update(ctx context.Context, citation *domain.Citation) error {
	query := `
		UPDATE citations SET
			relevance_score = $3, is_influential = $4, citation_context = $5,
			citation_depth = $6, parsed_authors = $7, parsed_title = $8,
			parsed_year = $9, parsing_confidence = $10
		WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(ctx, query,
		citation.ID,
		citation.UserID,
		citation.RelevanceScore,
		citation.IsInfluential,
		citation.Context,
		citation.Depth,
		citation.ParsedAuthors,
		citation.ParsedTitle,
		citation.ParsedYear,
		citation.ParsingConfidence,
	)
	if err != nil {
		return translateWriteError(err, "update citation", "citation", citation.ID.String(), citationConstraintFields)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("citation", citation.ID.String())
	}
	return nil
}

// Delete removes the edge.
func (r *PgCitationRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM citations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete citation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("citation", id.String())
	}
	return nil
}

// ListReferences returns the outgoing citations of paperID.
func (r *PgCitationRepository) ListReferences(ctx context.Context, userID, paperID uuid.UUID) ([]*domain.Reference, error) {
	query := `
		SELECT ` + citationColumns + `, ` + paperColumns + `,
			EXISTS (SELECT 1 FROM pdf_files f WHERE f.paper_id = p.id) AS has_pdf
		FROM citations c
		JOIN papers p ON p.id = c.cited_paper_id
		WHERE c.citing_paper_id = $1 AND c.user_id = $2
		ORDER BY c.created_at, c.id`

	return r.listJoined(ctx, query, "list references", paperID, userID)
}

// ListCitedBy returns the incoming citations of paperID.
func (r *PgCitationRepository) ListCitedBy(ctx context.Context, userID, paperID uuid.UUID) ([]*domain.Reference, error) {
	query := `
		SELECT ` + citationColumns + `, ` + paperColumns + `,
			EXISTS (SELECT 1 FROM pdf_files f WHERE f.paper_id = p.id) AS has_pdf
		FROM citations c
		JOIN papers p ON p.id = c.citing_paper_id
		WHERE c.cited_paper_id = $1 AND c.user_id = $2
		ORDER BY c.created_at, c.id`

	return r.listJoined(ctx, query, "list citing papers", paperID, userID)
}

func (r *PgCitationRepository) listJoined(ctx context.Context, query, op string, args ...interface{}) ([]*domain.Reference, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	refs, err := collect(rows, scanReference)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return refs, nil
}

// ListEdgesTouching returns every edge with an end in paperIDs.
func (r *PgCitationRepository) ListEdgesTouching(ctx context.Context, userID uuid.UUID, paperIDs []uuid.UUID) ([]domain.CitationEdge, error) {
	if len(paperIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT c.citing_paper_id, c.cited_paper_id
		FROM citations c
		WHERE c.user_id = $1
			AND (c.citing_paper_id = ANY($2) OR c.cited_paper_id = ANY($2))
		ORDER BY c.created_at, c.id`

	rows, err := r.db.Query(ctx, query, userID, paperIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list citation edges: %w", err)
	}
	edges, err := collect(rows, func(row pgx.Row) (domain.CitationEdge, error) {
		var e domain.CitationEdge
		err := row.Scan(&e.Source, &e.Target)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan citation edges: %w", err)
	}
	return edges, nil
}

func citationScanTargets(c *domain.Citation) []interface{} {
	return []interface{}{
		&c.ID,
		&c.UserID,
		&c.CitingPaperID,
		&c.CitedPaperID,
		&c.RelevanceScore,
		&c.IsInfluential,
		&c.Context,
		&c.Depth,
		&c.ParsedAuthors,
		&c.ParsedTitle,
		&c.ParsedYear,
		&c.ParsingConfidence,
		&c.CreatedAt,
	}
}

func scanCitation(row pgx.Row) (*domain.Citation, error) {
	var c domain.Citation
	if err := row.Scan(citationScanTargets(&c)...); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanReference(row pgx.Row) (*domain.Reference, error) {
	var ref domain.Reference
	p := &ref.Paper

	targets := citationScanTargets(&ref.Citation)
	targets = append(targets,
		&p.ID,
		&p.UserID,
		&p.Title,
		&p.Authors,
		&p.Abstract,
		&p.Year,
		&p.Journal,
		&p.DOI,
		&p.URL,
		&p.ArXivID,
		&p.CitationCount,
		&p.IsFavorite,
		&p.ReadingStatus,
		&p.CreatedAt,
		&p.UpdatedAt,
		&ref.HasPDF,
	)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return &ref, nil
}
