package accounts

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskvault/taskvault/internal/auth"
)

// ErrInvalidCredentials covers unknown email, wrong password and inactive
// accounts. Callers get one uniform failure so login probing learns nothing.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Session is the result of a successful register or login.
type Session struct {
	User        *User
	AccessToken string
	ExpiresAt   time.Time
}

// Service wraps account business rules and token issuance.
type Service struct {
	repo   Repository
	issuer *auth.Issuer
}

// NewService constructs a new Service.
func NewService(repo Repository, issuer *auth.Issuer) *Service {
	return &Service{repo: repo, issuer: issuer}
}

// Register creates an account with a bcrypt-hashed password and signs an
// access token for it.
func (s *Service) Register(ctx context.Context, email, password string) (*Session, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.CreateUser(ctx, email, string(hashed))
	if err != nil {
		return nil, err
	}
	return s.startSession(user)
}

// Authenticate validates email/password credentials and signs an access
// token on success.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.startSession(user)
}

func (s *Service) startSession(user *User) (*Session, error) {
	token, expiresAt, err := s.issuer.Issue(user.PublicID())
	if err != nil {
		return nil, err
	}
	return &Session{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}
