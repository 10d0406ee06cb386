package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	"echohole/internal/models"
	"echohole/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultSessionTTL is the lifetime of an admin session.
const DefaultSessionTTL = 24 * time.Hour

// AdminCredentials configures the single administrator account. When
// PasswordHash is set it is a bcrypt hash and Password is ignored.
type AdminCredentials struct {
	Username     string
	Password     string
	PasswordHash string
	SessionTTL   time.Duration
}

// AdminAuthService issues and verifies opaque admin session tokens.
type AdminAuthService struct {
	sessions repository.SessionRepository
	creds    AdminCredentials
	now      func() time.Time
}

func NewAdminAuthService(sessions repository.SessionRepository, creds AdminCredentials) *AdminAuthService {
	if creds.SessionTTL <= 0 {
		creds.SessionTTL = DefaultSessionTTL
	}
	return &AdminAuthService{sessions: sessions, creds: creds, now: time.Now}
}

func (s *AdminAuthService) checkPassword(password string) bool {
	if s.creds.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)) == nil
	}
	if s.creds.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(s.creds.Password), []byte(password)) == 1
}

// Login checks the credentials and opens a new session. Expired sessions are
// purged on the way.
func (s *AdminAuthService) Login(ctx context.Context, username, password string) (*models.AdminSession, error) {
	userOK := subtle.ConstantTimeCompare([]byte(s.creds.Username), []byte(username)) == 1
	passOK := s.checkPassword(password)
	if !userOK || !passOK {
		slog.WarnContext(ctx, "admin login failed", slog.String("username", username))
		return nil, models.NewUnauthorizedError("invalid credentials")
	}

	if _, err := s.PurgeExpired(ctx); err != nil {
		slog.WarnContext(ctx, "failed to purge expired admin sessions", slog.String("error", err.Error()))
	}

	now := s.now()
	session := &models.AdminSession{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(s.creds.SessionTTL).Unix(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, models.NewInternalError(err)
	}
	slog.InfoContext(ctx, "admin logged in", slog.String("username", username))
	return session, nil
}

// Verify returns the live session for token.
func (s *AdminAuthService) Verify(ctx context.Context, token string) (*models.AdminSession, error) {
	if token == "" {
		return nil, models.NewUnauthorizedError("unauthorized")
	}
	session, err := s.sessions.Get(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewUnauthorizedError("unauthorized")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if session.Expired(s.now().Unix()) {
		if err := s.sessions.Delete(ctx, token); err != nil {
			slog.WarnContext(ctx, "failed to delete expired admin session", slog.String("error", err.Error()))
		}
		return nil, models.NewUnauthorizedError("unauthorized")
	}
	return session, nil
}

// Logout ends the session. Unknown tokens are ignored.
func (s *AdminAuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// PurgeExpired deletes every expired session and returns how many were removed.
func (s *AdminAuthService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now().Unix())
}
