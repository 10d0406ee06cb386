package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"echohole/internal/contentfilter"
	"echohole/internal/database"
	"echohole/internal/models"
	"echohole/internal/moderation"
	"echohole/internal/notifications"
	"echohole/internal/ratelimit"
	"echohole/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// recordingPublisher captures published events in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type boardFixture struct {
	db         *gorm.DB
	board      *BoardService
	moderation *ModerationService
	events     *recordingPublisher
	clock      *fakeClock
}

func newBoardFixture(t *testing.T, policy moderation.Policy, phrases ...string) *boardFixture {
	t.Helper()
	db := setupTestDB(t)
	posts := repository.NewPostRepository(db)
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.DefaultLimit, ratelimit.DefaultWindow,
		ratelimit.WithClock(clock.Now))
	machine := moderation.NewMachine(policy)
	events := &recordingPublisher{}
	locks := NewPostLocks()

	return &boardFixture{
		db:         db,
		board:      NewBoardService(posts, limiter, contentfilter.New(phrases), machine, events, locks),
		moderation: NewModerationService(posts, machine, events, locks),
		events:     events,
		clock:      clock,
	}
}

func requireAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
	return appErr
}
