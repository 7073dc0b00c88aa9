package httpserver

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/pdf"
	"github.com/helixir/paper-library-service/internal/temporal"
)

func uploadRequest(t *testing.T, paperID uuid.UUID, field, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "ignored"))
	part, err := mw.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pdf/papers/"+paperID.String()+"/upload", &buf)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadPDF(t *testing.T) {
	paperID := uuid.New()
	content := []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n%%EOF")

	t.Run("stores a new file", func(t *testing.T) {
		var gotDoc *pdf.Document
		var gotName string
		var gotMethod domain.DownloadMethod
		lib := &fakePDFLibrary{
			attachFn: func(_ context.Context, userID, id uuid.UUID, doc *pdf.Document, fileName string, method domain.DownloadMethod) (*domain.PdfFile, bool, error) {
				assert.Equal(t, testUserID, userID)
				assert.Equal(t, paperID, id)
				gotDoc, gotName, gotMethod = doc, fileName, method
				return &domain.PdfFile{ID: uuid.New(), PaperID: id, FileName: fileName, SizeBytes: doc.SizeBytes, ContentHash: doc.SHA256}, true, nil
			},
		}
		s := newTestServer(t, Deps{PDFs: lib})

		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, uploadRequest(t, paperID, "file", "../../etc/paper.pdf", content))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		require.NotNil(t, gotDoc)
		assert.Equal(t, content, gotDoc.Content)
		assert.Equal(t, "paper.pdf", gotName)
		assert.Equal(t, domain.DownloadMethodUpload, gotMethod)

		var body pdfFileResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, int64(len(content)), body.SizeBytes)
		assert.Equal(t, gotDoc.SHA256, body.ContentHash)
	})

	t.Run("identical content returns the existing file", func(t *testing.T) {
		existing := &domain.PdfFile{ID: uuid.New(), PaperID: paperID}
		lib := &fakePDFLibrary{
			attachFn: func(context.Context, uuid.UUID, uuid.UUID, *pdf.Document, string, domain.DownloadMethod) (*domain.PdfFile, bool, error) {
				return existing, false, nil
			},
		}
		s := newTestServer(t, Deps{PDFs: lib})

		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, uploadRequest(t, paperID, "file", "paper.pdf", content))
		require.Equal(t, http.StatusOK, rec.Code)
		var body pdfFileResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, existing.ID, body.ID)
	})

	t.Run("rejects non pdf content", func(t *testing.T) {
		s := newTestServer(t, Deps{PDFs: &fakePDFLibrary{}})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, uploadRequest(t, paperID, "file", "paper.pdf", []byte("<html>nope</html>")))
		assertFieldError(t, rec, "file", "must be a PDF document")
	})

	t.Run("requires the file part", func(t *testing.T) {
		s := newTestServer(t, Deps{PDFs: &fakePDFLibrary{}})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, uploadRequest(t, paperID, "attachment", "paper.pdf", content))
		assertFieldError(t, rec, "file", "is required")
	})

	t.Run("rejects oversize files", func(t *testing.T) {
		big := append([]byte("%PDF-1.7\n"), bytes.Repeat([]byte("x"), 1<<20)...)
		s := newTestServer(t, Deps{PDFs: &fakePDFLibrary{}})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, uploadRequest(t, paperID, "file", "big.pdf", big))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("unknown paper", func(t *testing.T) {
		papers := &fakePapers{
			getFn: func(context.Context, uuid.UUID, uuid.UUID) (*domain.Paper, error) {
				return nil, domain.ErrNotFound
			},
		}
		s := newTestServer(t, Deps{Papers: papers, PDFs: &fakePDFLibrary{}})
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, uploadRequest(t, paperID, "file", "paper.pdf", content))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestFetchPDF(t *testing.T) {
	paperID := uuid.New()

	t.Run("disabled without temporal", func(t *testing.T) {
		s := newTestServer(t, Deps{})
		rec := do(t, s, http.MethodPost, "/api/v1/pdf/papers/"+paperID.String()+"/fetch", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"error":"feature disabled"}`, rec.Body.String())
	})

	t.Run("starts an acquisition", func(t *testing.T) {
		var got temporal.PDFAcquisitionInput
		acq := &fakeAcquisitions{
			startFn: func(_ context.Context, in temporal.PDFAcquisitionInput) (string, string, error) {
				got = in
				return temporal.AcquisitionWorkflowID(in.PaperID), "run-1", nil
			},
		}
		s := newTestServer(t, Deps{Acquisitions: acq})

		rec := do(t, s, http.MethodPost, "/api/v1/pdf/papers/"+paperID.String()+"/fetch", map[string]any{
			"url": "https://arxiv.org/pdf/1706.03762",
		})
		require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
		assert.Equal(t, temporal.PDFAcquisitionInput{UserID: testUserID, PaperID: paperID, URL: "https://arxiv.org/pdf/1706.03762"}, got)

		var body fetchResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, temporal.AcquisitionWorkflowID(paperID), body.WorkflowID)
		assert.Equal(t, "run-1", body.RunID)
		assert.Equal(t, "started", body.Status)
	})

	t.Run("rejects non http url", func(t *testing.T) {
		acq := &fakeAcquisitions{
			startFn: func(context.Context, temporal.PDFAcquisitionInput) (string, string, error) {
				t.Fatal("acquisition must not start")
				return "", "", nil
			},
		}
		s := newTestServer(t, Deps{Acquisitions: acq})
		rec := do(t, s, http.MethodPost, "/api/v1/pdf/papers/"+paperID.String()+"/fetch", map[string]any{"url": "ftp://example.com/a.pdf"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body validationResponse
		decodeJSON(t, rec, &body)
		assert.Contains(t, body.Fields, "url")
	})

	t.Run("already running conflicts", func(t *testing.T) {
		acq := &fakeAcquisitions{
			startFn: func(context.Context, temporal.PDFAcquisitionInput) (string, string, error) {
				return "", "", domain.NewAlreadyExistsError("pdf acquisition", paperID.String())
			},
		}
		s := newTestServer(t, Deps{Acquisitions: acq})
		rec := do(t, s, http.MethodPost, "/api/v1/pdf/papers/"+paperID.String()+"/fetch", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("reports status", func(t *testing.T) {
		s := newTestServer(t, Deps{Acquisitions: &fakeAcquisitions{}})
		rec := do(t, s, http.MethodGet, "/api/v1/pdf/papers/"+paperID.String()+"/fetch", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body fetchStatusResponse
		decodeJSON(t, rec, &body)
		assert.Equal(t, "running", body.Status)
		assert.Equal(t, temporal.AcquisitionWorkflowID(paperID), body.WorkflowID)
	})
}

func TestDownloadPDF_NotFound(t *testing.T) {
	s := newTestServer(t, Deps{PDFs: &fakePDFLibrary{}})
	rec := do(t, s, http.MethodGet, "/api/v1/pdf/"+uuid.NewString()+"/download", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
