package unpaywall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-library-service/internal/domain"
)

func newTestClient(t *testing.T, body string) (*Client, *string) {
	t.Helper()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := New(Config{BaseURL: srv.URL, Email: "me@example.org", RateLimit: 100}, nil)
	require.NoError(t, err)
	return client, &gotPath
}

func TestClient_FindPDF_BestLocation(t *testing.T) {
	client, gotPath := newTestClient(t, `{"doi":"10.1/a","is_oa":true,
		"best_oa_location":{"url":"https://x.org/a","url_for_pdf":"https://x.org/a.pdf"}}`)

	pdfURL, err := client.FindPDF(context.Background(), "10.1/a")
	require.NoError(t, err)
	assert.Equal(t, "https://x.org/a.pdf", pdfURL)
	assert.Equal(t, "/10.1/a?email=me%40example.org", *gotPath)
}

func TestClient_FindPDF_FallsBackToOtherLocations(t *testing.T) {
	client, _ := newTestClient(t, `{"doi":"10.1/a","is_oa":true,
		"best_oa_location":{"url":"https://x.org/a"},
		"oa_locations":[{"url":"https://x.org/a"},{"url_for_pdf":"https://repo.org/a.pdf"}]}`)

	pdfURL, err := client.FindPDF(context.Background(), "10.1/a")
	require.NoError(t, err)
	assert.Equal(t, "https://repo.org/a.pdf", pdfURL)
}

func TestClient_FindPDF_ClosedAccess(t *testing.T) {
	client, _ := newTestClient(t, `{"doi":"10.1/a","is_oa":false,"best_oa_location":null}`)

	_, err := client.FindPDF(context.Background(), "10.1/a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNew_RequiresEmail(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}
