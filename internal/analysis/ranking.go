package analysis

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

// Ranking parameters.
const (
	DefaultLimit = 10
	MaxLimit     = 50

	// HighPriorityThreshold is the minimum score of a high-priority reference.
	HighPriorityThreshold = 0.8

	relevanceWeight   = 0.4
	influentialWeight = 0.3
	citationWeight    = 0.3
)

// RankOptions controls RankReferences.
type RankOptions struct {
	// Limit caps the returned list, 1 to MaxLimit.
	Limit int
	// MinRelevance drops references whose relevance is below it, 0 to 1.
	MinRelevance float64
}

// DefaultRankOptions returns the options used when a caller passes none.
func DefaultRankOptions() RankOptions {
	return RankOptions{Limit: DefaultLimit}
}

// Validate checks the option bounds.
func (o RankOptions) Validate() error {
	errs := domain.FieldErrors{}
	if o.Limit < 1 || o.Limit > MaxLimit {
		errs.Add("limit", "must be between 1 and 50")
	}
	if math.IsNaN(o.MinRelevance) || o.MinRelevance < 0 || o.MinRelevance > 1 {
		errs.Add("minRelevance", "must be between 0 and 1")
	}
	return errs.Err()
}

// ScoredReference is a reference with its combined importance score.
type ScoredReference struct {
	Reference *domain.Reference
	Score     float64
}

// Recommendations aggregates over every candidate, not only the returned ones.
type Recommendations struct {
	HighPriority   int
	ShouldDownload int
}

// ReferenceAnalysis is the result of ranking one paper's references.
type ReferenceAnalysis struct {
	PaperID         uuid.UUID
	TopReferences   []ScoredReference
	Recommendations Recommendations
	// TotalReferences counts outgoing citations before filtering.
	TotalReferences int
	// AnalyzedReferences counts candidates that passed the relevance filter.
	AnalyzedReferences int
}

// RankReferences scores refs, the outgoing citations of paperID, and
// returns the top opts.Limit of them.
//
// score = 0.4*relevance + 0.3*influential + 0.3*ln(1+c)/ln(1+max), where c
// is the cited paper's citation count and max the largest count among the
// candidates. The citation term is 0 when max is 0. Ties break on
// relevance, then year (unknown last), then citation id.
func RankReferences(paperID uuid.UUID, refs []*domain.Reference, opts RankOptions) (*ReferenceAnalysis, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	candidates := make([]ScoredReference, 0, len(refs))
	maxCitations := 0
	for _, ref := range refs {
		if ref == nil || ref.Citation.Relevance() < opts.MinRelevance {
			continue
		}
		candidates = append(candidates, ScoredReference{Reference: ref})
		if c := ref.Paper.CitationCount; c > maxCitations {
			maxCitations = c
		}
	}

	var recs Recommendations
	for i := range candidates {
		score := Score(candidates[i].Reference, maxCitations)
		candidates[i].Score = score
		if score >= HighPriorityThreshold {
			recs.HighPriority++
			if !candidates[i].Reference.HasPDF {
				recs.ShouldDownload++
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return rankedBefore(candidates[i], candidates[j])
	})

	top := candidates
	if len(top) > opts.Limit {
		top = top[:opts.Limit]
	}

	return &ReferenceAnalysis{
		PaperID:            paperID,
		TopReferences:      top,
		Recommendations:    recs,
		TotalReferences:    len(refs),
		AnalyzedReferences: len(candidates),
	}, nil
}

// Score computes the combined importance of ref given the largest citation
// count among the candidates it is ranked with. The result is in [0,1].
func Score(ref *domain.Reference, maxCitations int) float64 {
	influential := 0.0
	if ref.Citation.IsInfluential {
		influential = 1
	}

	score := relevanceWeight*ref.Citation.Relevance() +
		influentialWeight*influential +
		citationWeight*normalizeCitations(ref.Paper.CitationCount, maxCitations)

	return clamp01(score)
}

// normalizeCitations maps c onto [0,1] on a log scale relative to maxCitations.
func normalizeCitations(c, maxCitations int) float64 {
	if maxCitations <= 0 || c <= 0 {
		return 0
	}
	return clamp01(math.Log1p(float64(c)) / math.Log1p(float64(maxCitations)))
}

func rankedBefore(a, b ScoredReference) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}

	ra, rb := a.Reference.Citation.Relevance(), b.Reference.Citation.Relevance()
	if ra != rb {
		return ra > rb
	}

	ya, yb := a.Reference.Paper.Year, b.Reference.Paper.Year
	switch {
	case ya != nil && yb == nil:
		return true
	case ya == nil && yb != nil:
		return false
	case ya != nil && yb != nil && *ya != *yb:
		return *ya > *yb
	}

	return a.Reference.Citation.ID.String() < b.Reference.Citation.ID.String()
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
