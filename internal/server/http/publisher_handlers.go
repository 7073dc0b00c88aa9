package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/helixir/paper-library-service/internal/domain"
)

type createPublisherAccountRequest struct {
	Publisher   string `json:"publisher" validate:"required,max=100"`
	Username    string `json:"username" validate:"required,max=255"`
	Password    string `json:"password" validate:"required,max=1024"`
	Institution string `json:"institution" validate:"max=255"`
}

// credentialAAD binds sealed credentials to their owner and publisher, so a
// ciphertext copied to another row fails to open.
func credentialAAD(userID uuid.UUID, publisher string) []byte {
	return []byte(userID.String() + ":" + publisher)
}

// createPublisherAccount handles POST /publisher-accounts.
func (s *Server) createPublisherAccount(w http.ResponseWriter, r *http.Request) {
	var req createPublisherAccountRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	userID := currentUser(r)
	publisher := domain.NormalizePublisher(req.Publisher)
	if publisher == "" {
		s.writeDomainError(w, r, domain.NewValidationError("publisher", "is required"))
		return
	}

	sealed, err := s.deps.Vault.SealJSON(domain.PublisherCredentials{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	}, credentialAAD(userID, publisher))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	account, err := s.deps.Publishers.Create(r.Context(), &domain.PublisherAccount{
		UserID:               userID,
		Publisher:            publisher,
		Username:             strings.TrimSpace(req.Username),
		EncryptedCredentials: sealed,
		Institution:          strings.TrimSpace(req.Institution),
		VerificationStatus:   domain.VerificationPending,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPublisherAccountResponse(account))
}

// listPublisherAccounts handles GET /publisher-accounts.
func (s *Server) listPublisherAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.deps.Publishers.List(r.Context(), currentUser(r))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, convertAll(accounts, toPublisherAccountResponse))
}

// deletePublisherAccount handles DELETE /publisher-accounts/{accountID}.
func (s *Server) deletePublisherAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "accountID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if err := s.deps.Publishers.Delete(r.Context(), currentUser(r), accountID); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// verifyPublisherAccount handles POST /publisher-accounts/{accountID}/verify.
// The stored credentials must unseal and carry a username and password.
func (s *Server) verifyPublisherAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "accountID")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	ctx := r.Context()
	userID := currentUser(r)

	account, err := s.deps.Publishers.Get(ctx, userID, accountID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	var creds domain.PublisherCredentials
	status := domain.VerificationVerified
	if err := s.deps.Vault.OpenJSON(account.EncryptedCredentials, credentialAAD(userID, account.Publisher), &creds); err != nil {
		s.requestLogger(r).Warn().Err(err).Str("account_id", accountID.String()).Msg("publisher credentials failed to open")
		status = domain.VerificationFailed
	} else if creds.Username == "" || creds.Password == "" {
		status = domain.VerificationFailed
	}

	now := time.Now().UTC()
	if err := s.deps.Publishers.SetVerification(ctx, userID, accountID, status, now); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	account.VerificationStatus = status
	account.LastVerifiedAt = &now
	writeJSON(w, http.StatusOK, toPublisherAccountResponse(account))
}
