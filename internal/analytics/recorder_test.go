package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"

	"echohole/internal/models"
	"echohole/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type visitStoreStub struct {
	mu     sync.Mutex
	visits []models.Visit
	err    error
}

func (s *visitStoreStub) Create(_ context.Context, v *models.Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.visits = append(s.visits, *v)
	return nil
}

func TestRecorder_RecordsAndPublishes(t *testing.T) {
	store := &visitStoreStub{}
	bus := notifications.NewBus()
	sub := bus.Subscribe("test", 4)
	defer sub.Close()

	r := NewRecorder(store, bus)
	r.Record(context.Background(), models.Visit{
		VisitorID: "v1",
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
		PagePath:  "/",
	})
	r.Wait()

	require.Len(t, store.visits, 1)
	v := store.visits[0]
	assert.Equal(t, "Linux", v.DeviceModel)
	assert.Equal(t, "Firefox", v.BrowserFamily)
	assert.NotZero(t, v.CreatedAt)

	e := <-sub.C
	assert.Equal(t, notifications.EventNewVisit, e.Type)
}

func TestRecorder_FailureIsSwallowed(t *testing.T) {
	store := &visitStoreStub{err: errors.New("disk full")}
	bus := notifications.NewBus()
	sub := bus.Subscribe("test", 4)
	defer sub.Close()

	r := NewRecorder(store, bus)
	assert.NotPanics(t, func() {
		r.Record(context.Background(), models.Visit{PagePath: "/"})
	})
	r.Wait()

	assert.Empty(t, store.visits)
	assert.Len(t, sub.C, 0)
}

func TestRecorder_SurvivesCancelledRequest(t *testing.T) {
	store := &visitStoreStub{}
	r := NewRecorder(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Record(ctx, models.Visit{PagePath: "/"})
	r.Wait()

	assert.Len(t, store.visits, 1)
}
