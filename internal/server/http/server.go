// Package httpserver provides the HTTP REST API of the paper library service.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-library-service/internal/analysis"
	"github.com/helixir/paper-library-service/internal/assistant"
	"github.com/helixir/paper-library-service/internal/auth"
	"github.com/helixir/paper-library-service/internal/database"
	"github.com/helixir/paper-library-service/internal/domain"
	"github.com/helixir/paper-library-service/internal/events"
	"github.com/helixir/paper-library-service/internal/llm"
	"github.com/helixir/paper-library-service/internal/observability"
	"github.com/helixir/paper-library-service/internal/papersources"
	"github.com/helixir/paper-library-service/internal/pdf"
	"github.com/helixir/paper-library-service/internal/repository"
	"github.com/helixir/paper-library-service/internal/temporal"
)

// Authenticator registers users, issues sessions and verifies bearer tokens.
type Authenticator interface {
	Register(ctx context.Context, email, password, displayName string) (*auth.Session, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	Me(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	VerifyToken(raw string) (uuid.UUID, error)
}

// Analyzer ranks references and assembles citation networks.
type Analyzer interface {
	AnalyzeReferences(ctx context.Context, userID, paperID uuid.UUID, opts analysis.RankOptions) (*analysis.ReferenceAnalysis, error)
	CitationNetwork(ctx context.Context, userID, paperID uuid.UUID, depth int) (*analysis.Network, error)
}

// MetadataResolver resolves a DOI or arXiv id to a bibliographic record.
type MetadataResolver interface {
	Resolve(ctx context.Context, id domain.Identifier) (*papersources.Metadata, error)
}

// PDFLibrary stores, streams and removes PDF blobs with their records.
type PDFLibrary interface {
	Attach(ctx context.Context, userID, paperID uuid.UUID, doc *pdf.Document, fileName string, method domain.DownloadMethod) (*domain.PdfFile, bool, error)
	Open(ctx context.Context, userID, id uuid.UUID) (*domain.PdfFile, io.ReadCloser, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// AcquisitionStarter starts and inspects background PDF acquisitions.
type AcquisitionStarter interface {
	StartPDFAcquisition(ctx context.Context, input temporal.PDFAcquisitionInput) (workflowID, runID string, err error)
	AcquisitionStatus(ctx context.Context, paperID uuid.UUID) (string, error)
}

// Assistant generates summaries and answers chat conversations.
type Assistant interface {
	Summarize(ctx context.Context, userID, paperID uuid.UUID) (*domain.AiSummary, error)
	Chat(ctx context.Context, userID uuid.UUID, paperID *uuid.UUID, messages []llm.Message) (*assistant.ChatReply, error)
}

// CredentialVault seals publisher credentials.
type CredentialVault interface {
	SealJSON(value any, additionalData []byte) ([]byte, error)
	OpenJSON(sealed, additionalData []byte, out any) error
}

// HealthChecker reports database health.
type HealthChecker interface {
	Health(ctx context.Context) database.HealthStatus
}

// TagTxFunc runs fn with a tag repository bound to one transaction.
type TagTxFunc func(ctx context.Context, fn func(tags repository.TagRepository) error) error

// Deps are the collaborators of the HTTP handlers. Acquisitions and
// Assistant may be nil, which disables their endpoints.
type Deps struct {
	Auth         Authenticator
	Papers       repository.PaperRepository
	Citations    repository.CitationRepository
	Tags         repository.TagRepository
	TagTx        TagTxFunc
	Notes        repository.NoteRepository
	Libraries    repository.LibraryRepository
	PdfFiles     repository.PdfFileRepository
	DownloadLogs repository.DownloadLogRepository
	Summaries    repository.SummaryRepository
	Publishers   repository.PublisherAccountRepository
	Analysis     Analyzer
	Resolver     MetadataResolver
	PDFs         PDFLibrary
	Acquisitions AcquisitionStarter
	Assistant    Assistant
	Vault        CredentialVault
	Emitter      *events.Emitter
	Health       HealthChecker
	Metrics      *observability.Metrics
}

// Config holds HTTP server configuration.
type Config struct {
	Address            string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CORSAllowedOrigins []string
	// MaxUploadBytes caps multipart PDF uploads.
	MaxUploadBytes int64
}

// Server is the HTTP REST API server.
type Server struct {
	deps       Deps
	cfg        Config
	router     chi.Router
	httpServer *http.Server
	logger     zerolog.Logger
}

// NewServer creates the HTTP server and its routes.
func NewServer(cfg Config, deps Deps, logger zerolog.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 << 20
	}
	s := &Server{
		deps:   deps,
		cfg:    cfg,
		logger: logger.With().Str("component", "http-server").Logger(),
	}

	s.router = s.buildRouter()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	if len(s.cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", s.healthHandler)
	r.Get("/readyz", s.readinessHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.me)

			r.Route("/papers", func(r chi.Router) {
				r.Post("/", s.createPaper)
				r.Get("/", s.listPapers)
				r.Post("/quick-add", s.quickAddPaper)
				r.Get("/{paperID}", s.getPaper)
				r.Patch("/{paperID}", s.updatePaper)
				r.Delete("/{paperID}", s.deletePaper)
				r.Post("/{paperID}/favorite", s.toggleFavorite)
				r.Get("/{paperID}/tags", s.listPaperTags)
				r.Put("/{paperID}/tags", s.replacePaperTags)
			})

			r.Route("/citations", func(r chi.Router) {
				r.Post("/", s.createCitation)
				r.Patch("/{citationID}", s.updateCitation)
				r.Delete("/{citationID}", s.deleteCitation)
				r.Get("/paper/{paperID}/references", s.listReferences)
				r.Get("/paper/{paperID}/cited-by", s.listCitedBy)
				r.Get("/paper/{paperID}/analyze", s.analyzeReferences)
				r.Get("/network/{paperID}", s.citationNetwork)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Post("/", s.createTag)
				r.Get("/", s.listTags)
				r.Patch("/{tagID}", s.updateTag)
				r.Delete("/{tagID}", s.deleteTag)
			})

			r.Route("/notes", func(r chi.Router) {
				r.Post("/", s.createNote)
				r.Get("/", s.listNotes)
				r.Get("/{noteID}", s.getNote)
				r.Patch("/{noteID}", s.updateNote)
				r.Delete("/{noteID}", s.deleteNote)
			})

			r.Route("/libraries", func(r chi.Router) {
				r.Post("/", s.createLibrary)
				r.Get("/", s.listLibraries)
				r.Get("/{libraryID}", s.getLibrary)
				r.Patch("/{libraryID}", s.updateLibrary)
				r.Delete("/{libraryID}", s.deleteLibrary)
				r.Post("/{libraryID}/items", s.addLibraryItem)
				r.Get("/{libraryID}/items", s.listLibraryItems)
				r.Patch("/{libraryID}/items/{itemID}", s.updateLibraryItem)
				r.Delete("/{libraryID}/items/{itemID}", s.removeLibraryItem)
			})

			r.Route("/pdf", func(r chi.Router) {
				r.Post("/papers/{paperID}/upload", s.uploadPDF)
				r.Post("/papers/{paperID}/fetch", s.fetchPDF)
				r.Get("/papers/{paperID}/fetch", s.fetchStatus)
				r.Get("/papers/{paperID}", s.listPDFs)
				r.Get("/papers/{paperID}/downloads", s.listDownloadLogs)
				r.Get("/{pdfID}/download", s.downloadPDF)
				r.Delete("/{pdfID}", s.deletePDF)
			})

			r.Route("/summaries/papers/{paperID}", func(r chi.Router) {
				r.Post("/", s.generateSummary)
				r.Get("/", s.getSummary)
				r.Delete("/", s.deleteSummary)
			})
			r.Post("/chat", s.chat)

			r.Route("/publisher-accounts", func(r chi.Router) {
				r.Post("/", s.createPublisherAccount)
				r.Get("/", s.listPublisherAccounts)
				r.Delete("/{accountID}", s.deletePublisherAccount)
				r.Post("/{accountID}/verify", s.verifyPublisherAccount)
			})
		})
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// healthHandler returns basic liveness status.
func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readinessHandler reports whether the database is reachable.
func (s *Server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	health := s.deps.Health.Health(r.Context())
	if health.Status != "healthy" {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": health.Status,
			"error":    health.Error,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ready",
		"database": "healthy",
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}
