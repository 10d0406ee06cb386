package service

import (
	"context"
	"testing"
	"time"

	"echohole/internal/models"
	"echohole/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T, creds AdminCredentials) (*AdminAuthService, *fakeClock) {
	t.Helper()
	db := setupTestDB(t)
	svc := NewAdminAuthService(repository.NewSessionRepository(db), creds)
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	svc.now = clock.Now
	return svc, clock
}

func TestAdminAuth_LoginVerifyLogout(t *testing.T) {
	svc, _ := newAuthFixture(t, AdminCredentials{Username: "admin", Password: "secret"})
	ctx := context.Background()

	session, err := svc.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, session.CreatedAt+int64(DefaultSessionTTL/time.Second), session.ExpiresAt)

	got, err := svc.Verify(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	require.NoError(t, svc.Logout(ctx, session.ID))
	_, err = svc.Verify(ctx, session.ID)
	requireAppError(t, err, models.CodeUnauthorized)

	require.NoError(t, svc.Logout(ctx, ""))
}

func TestAdminAuth_RejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t, AdminCredentials{Username: "admin", Password: "secret"})
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "wrong")
	requireAppError(t, err, models.CodeUnauthorized)
	_, err = svc.Login(ctx, "root", "secret")
	requireAppError(t, err, models.CodeUnauthorized)
	_, err = svc.Verify(ctx, "")
	requireAppError(t, err, models.CodeUnauthorized)
	_, err = svc.Verify(ctx, "no-such-token")
	requireAppError(t, err, models.CodeUnauthorized)
}

func TestAdminAuth_EmptyPasswordNeverMatches(t *testing.T) {
	svc, _ := newAuthFixture(t, AdminCredentials{Username: "admin"})
	_, err := svc.Login(context.Background(), "admin", "")
	requireAppError(t, err, models.CodeUnauthorized)
}

func TestAdminAuth_BcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	svc, _ := newAuthFixture(t, AdminCredentials{
		Username:     "admin",
		Password:     "ignored",
		PasswordHash: string(hash),
	})
	ctx := context.Background()

	_, err = svc.Login(ctx, "admin", "hunter2")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "admin", "ignored")
	requireAppError(t, err, models.CodeUnauthorized)
}

func TestAdminAuth_SessionsExpire(t *testing.T) {
	svc, clock := newAuthFixture(t, AdminCredentials{Username: "admin", Password: "secret", SessionTTL: time.Hour})
	ctx := context.Background()

	old, err := svc.Login(ctx, "admin", "secret")
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	_, err = svc.Verify(ctx, old.ID)
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)
	_, err = svc.Verify(ctx, old.ID)
	requireAppError(t, err, models.CodeUnauthorized)

	stale, err := svc.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	clock.Advance(2 * time.Hour)

	fresh, err := svc.Login(ctx, "admin", "secret")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, stale.ID)
	requireAppError(t, err, models.CodeUnauthorized)

	n, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "login already purged the stale session")

	_, err = svc.Verify(ctx, fresh.ID)
	require.NoError(t, err)
}
