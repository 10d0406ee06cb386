package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"echohole/internal/models"
	"echohole/internal/notifications"
	"echohole/internal/observability"
)

const recordTimeout = 5 * time.Second

// VisitStore persists visits.
type VisitStore interface {
	Create(ctx context.Context, visit *models.Visit) error
}

// Recorder writes visits asynchronously. Failures are logged and counted and
// never reach the request that triggered them.
type Recorder struct {
	store     VisitStore
	publisher notifications.Publisher
	wg        sync.WaitGroup
}

// NewRecorder returns a Recorder writing to store and announcing visits on publisher.
func NewRecorder(store VisitStore, publisher notifications.Publisher) *Recorder {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	return &Recorder{store: store, publisher: publisher}
}

// Record classifies the visit's user agent and stores it in the background.
// The caller's context only contributes request-scoped values; cancellation
// of the request does not abort the write.
func (r *Recorder) Record(ctx context.Context, visit models.Visit) {
	if visit.DeviceModel == "" && visit.BrowserFamily == "" {
		visit.DeviceModel, visit.BrowserFamily = Classify(visit.UserAgent)
	}
	if visit.CreatedAt == 0 {
		visit.CreatedAt = time.Now().Unix()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				observability.VisitsRecorded.WithLabelValues("panic").Inc()
				slog.ErrorContext(ctx, "panic recording visit", slog.Any("panic", rec))
			}
		}()

		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
		defer cancel()

		if err := r.store.Create(wctx, &visit); err != nil {
			observability.VisitsRecorded.WithLabelValues("error").Inc()
			slog.WarnContext(ctx, "failed to record visit",
				slog.String("path", visit.PagePath), slog.String("error", err.Error()))
			return
		}
		observability.VisitsRecorded.WithLabelValues("ok").Inc()

		event := notifications.NewEvent(notifications.EventNewVisit, 0, map[string]any{
			"page_path":      visit.PagePath,
			"device_model":   visit.DeviceModel,
			"browser_family": visit.BrowserFamily,
			"created_at":     visit.CreatedAt,
		})
		if err := r.publisher.Publish(wctx, event); err != nil {
			slog.WarnContext(ctx, "failed to publish visit event", slog.String("error", err.Error()))
		}
	}()
}

// Wait blocks until all in-flight recordings finish.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
