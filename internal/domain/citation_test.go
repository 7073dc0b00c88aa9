package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCitation_Validate(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	tests := []struct {
		name      string
		citation  Citation
		wantField string
	}{
		{name: "valid", citation: Citation{CitingPaperID: a, CitedPaperID: b, Depth: 1, RelevanceScore: floatPtr(0.5)}},
		{name: "self citation", citation: Citation{CitingPaperID: a, CitedPaperID: a, Depth: 1}, wantField: "citedPaperId"},
		{name: "missing citing", citation: Citation{CitedPaperID: b, Depth: 1}, wantField: "citingPaperId"},
		{name: "relevance above one", citation: Citation{CitingPaperID: a, CitedPaperID: b, Depth: 1, RelevanceScore: floatPtr(1.2)}, wantField: "relevanceScore"},
		{name: "negative confidence", citation: Citation{CitingPaperID: a, CitedPaperID: b, Depth: 1, ParsingConfidence: floatPtr(-0.1)}, wantField: "parsingConfidence"},
		{name: "zero depth", citation: Citation{CitingPaperID: a, CitedPaperID: b}, wantField: "citationDepth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.citation.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var fe FieldErrors
			require.True(t, errors.As(err, &fe))
			assert.Contains(t, fe, tt.wantField)
		})
	}
}

func TestCitation_Relevance(t *testing.T) {
	assert.Equal(t, 0.0, (&Citation{}).Relevance())
	assert.Equal(t, 0.7, (&Citation{RelevanceScore: floatPtr(0.7)}).Relevance())
}

func TestLibraryItem_Validate(t *testing.T) {
	item := LibraryItem{PaperID: uuid.New(), ReadingStatus: ReadingStatusToRead, Rating: intPtr(6)}
	var fe FieldErrors
	require.True(t, errors.As(item.Validate(), &fe))
	assert.Contains(t, fe, "rating")

	item.Rating = intPtr(5)
	assert.NoError(t, item.Validate())
}

func TestTag_Validate(t *testing.T) {
	assert.NoError(t, (&Tag{Name: "transformers", Color: DefaultTagColor}).Validate())
	assert.ErrorIs(t, (&Tag{Name: "x", Color: "red"}).Validate(), ErrInvalidInput)
	assert.ErrorIs(t, (&Tag{Name: " ", Color: DefaultTagColor}).Validate(), ErrInvalidInput)
}

func TestPage_TotalPages(t *testing.T) {
	assert.Equal(t, 0, Page[int]{Total: 0, PageSize: 20}.TotalPages())
	assert.Equal(t, 1, Page[int]{Total: 20, PageSize: 20}.TotalPages())
	assert.Equal(t, 3, Page[int]{Total: 41, PageSize: 20}.TotalPages())

	req := PageRequest{Page: 3, PageSize: 20}
	assert.Equal(t, 40, req.Offset())
	assert.NoError(t, req.Validate())
	assert.Error(t, PageRequest{Page: 0, PageSize: 101}.Validate())
}
