package semanticscholar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-library-service/internal/domain"
)

const paperJSON = `{
	"paperId": "abc",
	"title": "  Attention Is\n All You Need ",
	"abstract": "The dominant sequence transduction models...",
	"year": 2017,
	"venue": "NeurIPS",
	"journal": {"name": "Advances in Neural Information Processing Systems"},
	"authors": [{"authorId": "1", "name": "Ashish Vaswani"}, {"name": " "}, {"name": "Noam Shazeer"}],
	"citationCount": 90000,
	"url": "https://www.semanticscholar.org/paper/abc",
	"openAccessPdf": {"url": "https://arxiv.org/pdf/1706.03762", "status": "GREEN"},
	"externalIds": {"DOI": "10.5555/3295222.3295349", "ArXiv": "1706.03762"}
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, APIKey: "secret", RateLimit: 100}, nil)
}

func TestClient_GetByDOI(t *testing.T) {
	var gotPath, gotKey, gotFields string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotFields = r.URL.Query().Get("fields")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(paperJSON))
	})

	m, err := client.GetByDOI(context.Background(), "10.5555/3295222.3295349")
	require.NoError(t, err)

	assert.Equal(t, "/paper/DOI:10.5555/3295222.3295349", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Contains(t, gotFields, "citationCount")

	assert.Equal(t, "semantic_scholar", m.Source)
	assert.Equal(t, "Attention Is All You Need", m.Title)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, m.Authors)
	require.NotNil(t, m.Year)
	assert.Equal(t, 2017, *m.Year)
	assert.Equal(t, "Advances in Neural Information Processing Systems", m.Journal)
	assert.Equal(t, 90000, m.CitationCount)
	assert.Equal(t, "10.5555/3295222.3295349", m.DOI)
	assert.Equal(t, "1706.03762", m.ArXivID)
	assert.Equal(t, "https://arxiv.org/pdf/1706.03762", m.PDFURL)
}

func TestClient_GetByArXiv(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"paperId":"x","title":"T","year":0}`))
	})

	m, err := client.GetByArXiv(context.Background(), "2101.00001")
	require.NoError(t, err)
	assert.Equal(t, "/paper/ARXIV:2101.00001", gotPath)
	assert.Nil(t, m.Year)
	assert.Empty(t, m.PDFURL)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target error
	}{
		{"not found", http.StatusNotFound, domain.ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, domain.ErrRateLimited},
		{"server error", http.StatusInternalServerError, domain.ErrUpstream},
		{"forbidden", http.StatusForbidden, domain.ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			})

			_, err := client.GetByDOI(context.Background(), "10.1/x")
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, 1, calls, "requests are not retried")
		})
	}
}

func TestClient_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := client.GetByDOI(context.Background(), "10.1/x")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
