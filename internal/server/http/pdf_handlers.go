package httpserver

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/pdf"
	"github.com/helixir/paper-library-service/internal/temporal"
)

// multipartOverhead is allowed on top of the file size for headers and
// boundaries.
const multipartOverhead = 64 << 10

type fetchPDFRequest struct {
	URL string `json:"url" validate:"omitempty,http_url"`
}

// uploadPDF handles POST /pdf/papers/{paperID}/upload. The body is a
// multipart form whose "file" part holds the PDF.
func (s *Server) uploadPDF(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	ctx := r.Context()
	userID := currentUser(r)

	if _, err := s.deps.Papers.Get(ctx, userID, paperID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+multipartOverhead)
	part, err := filePart(r)
	if err != nil {
		s.writeUploadError(w, r, err)
		return
	}
	defer part.Close()

	doc, err := pdf.Read(part, s.cfg.MaxUploadBytes)
	if err != nil {
		s.writeUploadError(w, r, err)
		return
	}

	fileName := part.FileName()
	if fileName != "" {
		fileName = filepath.Base(fileName)
	}
	file, created, err := s.deps.PDFs.Attach(ctx, userID, paperID, doc, fileName, domain.DownloadMethodUpload)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	writeJSON(w, status, toPdfFileResponse(file))
}

// filePart advances the multipart reader to the "file" part.
func filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, domain.NewValidationError("file", "request must be multipart/form-data")
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, domain.NewValidationError("file", "is required")
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" {
			return part, nil
		}
		part.Close()
	}
}

func (s *Server) writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, pdf.ErrTooLarge), errors.As(err, &maxErr):
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds maximum size of "+strconv.FormatInt(s.cfg.MaxUploadBytes, 10)+" bytes")
	case errors.Is(err, pdf.ErrNotPDF):
		s.writeDomainError(w, r, domain.NewValidationError("file", "must be a PDF document"))
	case errors.Is(err, domain.ErrInvalidInput):
		s.writeDomainError(w, r, err)
	default:
		s.writeDomainError(w, r, domain.NewValidationError("file", "could not be read"))
	}
}

// fetchPDF handles POST /pdf/papers/{paperID}/fetch. It starts a background
// acquisition and answers 202 with the workflow id.
func (s *Server) fetchPDF(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	var req fetchPDFRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			s.writeDomainError(w, r, err)
			return
		}
	}
	if s.deps.Acquisitions == nil {
		s.writeDomainError(w, r, domain.ErrFeatureDisabled)
		return
	}

	ctx := r.Context()
	userID := currentUser(r)
	if _, err := s.deps.Papers.Get(ctx, userID, paperID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	workflowID, runID, err := s.deps.Acquisitions.StartPDFAcquisition(ctx, temporal.PDFAcquisitionInput{
		UserID:  userID,
		PaperID: paperID,
		URL:     req.URL,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.requestLogger(r).Info().
		Str("paper_id", paperID.String()).
		Str("workflow_id", workflowID).
		Msg("pdf acquisition started")
	writeJSON(w, http.StatusAccepted, fetchResponse{WorkflowID: workflowID, RunID: runID, Status: "started"})
}

// fetchStatus handles GET /pdf/papers/{paperID}/fetch.
func (s *Server) fetchStatus(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if s.deps.Acquisitions == nil {
		s.writeDomainError(w, r, domain.ErrFeatureDisabled)
		return
	}
	if _, err := s.deps.Papers.Get(r.Context(), currentUser(r), paperID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	status, err := s.deps.Acquisitions.AcquisitionStatus(r.Context(), paperID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fetchStatusResponse{
		WorkflowID: temporal.AcquisitionWorkflowID(paperID),
		Status:     status,
	})
}

// listPDFs handles GET /pdf/papers/{paperID}.
func (s *Server) listPDFs(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	userID := currentUser(r)
	if _, err := s.deps.Papers.Get(r.Context(), userID, paperID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	files, err := s.deps.PdfFiles.ListForPaper(r.Context(), userID, paperID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convertAll(files, toPdfFileResponse))
}

// listDownloadLogs handles GET /pdf/papers/{paperID}/downloads.
func (s *Server) listDownloadLogs(w http.ResponseWriter, r *http.Request) {
	paperID, err := pathID(r, "paperID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	userID := currentUser(r)
	if _, err := s.deps.Papers.Get(r.Context(), userID, paperID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	logs, err := s.deps.DownloadLogs.ListForPaper(r.Context(), userID, paperID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convertAll(logs, toDownloadLogResponse))
}

// downloadPDF handles GET /pdf/{pdfID}/download and streams the blob.
func (s *Server) downloadPDF(w http.ResponseWriter, r *http.Request) {
	pdfID, err := pathID(r, "pdfID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	file, body, err := s.deps.PDFs.Open(r.Context(), currentUser(r), pdfID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.SizeBytes, 10))
	w.Header().Set("Content-Disposition", contentDisposition(file.FileName))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		s.requestLogger(r).Warn().Err(err).Str("pdf_file_id", pdfID.String()).Msg("pdf stream interrupted")
	}
}

// deletePDF handles DELETE /pdf/{pdfID}.
func (s *Server) deletePDF(w http.ResponseWriter, r *http.Request) {
	pdfID, err := pathID(r, "pdfID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.deps.PDFs.Delete(r.Context(), currentUser(r), pdfID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
