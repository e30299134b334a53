package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Logger is the subset of logging.Logger the Authenticator uses.
type Logger interface {
	Warn(msg string, args ...any)
}

// Session is the result of a successful login.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Staff       Staff     `json:"staff"`
}

// Authenticator checks staff credentials and issues access tokens.
type Authenticator struct {
	repo       *StaffRepository
	secret     string
	ttlMinutes int
	logger     Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthenticator creates an Authenticator. logger may be nil.
func NewAuthenticator(repo *StaffRepository, secret string, ttlMinutes int, logger Logger) *Authenticator {
	return &Authenticator{
		repo:       repo,
		secret:     secret,
		ttlMinutes: ttlMinutes,
		logger:     logger,
	}
}

// Login verifies username and password and returns a signed session.
// Unknown usernames, wrong passwords and inactive accounts all yield
// ErrInvalidCredentials so callers cannot enumerate usernames.
func (a *Authenticator) Login(ctx context.Context, username, password string) (Session, error) {
	if !IsValidUsername(username) || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	staff, err := a.repo.GetByUsername(ctx, username)
	if errors.Is(err, ErrStaffNotFound) {
		// Spend the same time as a real verification.
		VerifyPassword(password, a.dummy()) //nolint:errcheck // timing only
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}

	ok, err := VerifyPassword(password, staff.PasswordHash)
	if err != nil {
		return Session{}, fmt.Errorf("verifying password for %q: %w", username, err)
	}
	if !ok || !staff.Active {
		return Session{}, ErrInvalidCredentials
	}

	if NeedsRehash(staff.PasswordHash) {
		a.rehash(ctx, staff, password)
	}

	token, expires, err := GenerateAccessToken(staff, a.secret, a.ttlMinutes)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expires,
		Staff:       staff,
	}, nil
}

// Verify parses a bearer token.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	return ParseToken(token, a.secret)
}

func (a *Authenticator) rehash(ctx context.Context, staff Staff, password string) {
	hash, err := HashPassword(password)
	if err == nil {
		err = a.repo.SetPasswordHash(ctx, staff.ID, hash)
	}
	if err != nil && a.logger != nil {
		a.logger.Warn("upgrading password hash failed", "staff_id", staff.ID, "error", err)
	}
}

func (a *Authenticator) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = HashPassword("not-a-real-password") //nolint:errcheck // falls back to fast failure
	})
	return a.dummyHash
}
