package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helixir/paper-library-service/internal/domain"
)

// UserStore is the subset of the user repository the service needs.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Session is a signed token and the user it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Service registers and logs in users.
type Service struct {
	users  UserStore
	hasher *PasswordHasher
	tokens *TokenManager
	logger zerolog.Logger

	// dummyHash is compared against for unknown e-mails.
	dummyHash string
}

// NewService creates an auth service.
func NewService(users UserStore, hasher *PasswordHasher, tokens *TokenManager, logger zerolog.Logger) (*Service, error) {
	dummy, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	return &Service{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		logger:    logger.With().Str("component", "auth").Logger(),
		dummyHash: dummy,
	}, nil
}

// Register creates an account and returns a session for it.
// Returns domain.ErrAlreadyExists if the e-mail is taken.
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*Session, error) {
	email = strings.TrimSpace(email)

	errs := domain.FieldErrors{}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs.Add("email", "must be a valid e-mail address")
	}
	if len(password) < MinPasswordLength {
		errs.Add("password", "must be at least 8 characters")
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return s.session(user)
}

// Login checks credentials and returns a session. Unknown e-mails and
// wrong passwords both return domain.ErrUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		_ = s.hasher.Compare(s.dummyHash, password)
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
		}
		return nil, err
	}

	return s.session(user)
}

// Me returns the account of an authenticated user.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// VerifyToken returns the user id a bearer token was issued for.
func (s *Service) VerifyToken(raw string) (uuid.UUID, error) {
	return s.tokens.Verify(raw)
}

func (s *Service) session(user *domain.User) (*Session, error) {
	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}
