package service

import (
	"context"
	"time"

	"echohole/internal/models"
	"echohole/internal/observability"
	"echohole/internal/repository"
)

const (
	defaultWindowHours  = 24
	maxWindowHours      = 720
	realtimeWindow      = 5 * time.Minute
	recentVisitsLimit   = 50
	defaultRealtimeSize = 20
	maxRealtimeSize     = 100
)

// AnalyticsService aggregates recorded visits for the admin dashboard.
type AnalyticsService struct {
	visits repository.VisitRepository
	now    func() time.Time
}

func NewAnalyticsService(visits repository.VisitRepository) *AnalyticsService {
	return &AnalyticsService{visits: visits, now: time.Now}
}

// GetAnalytics summarizes visits created in the last windowHours hours.
// Non-positive windows default to 24 hours and windows are capped at 30 days.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, windowHours int) (summary *models.AnalyticsSummary, err error) {
	span, ctx := observability.NewSpan(ctx, "analytics.summary")
	defer func() {
		span.SetError(err)
		span.End()
	}()

	if windowHours <= 0 {
		windowHours = defaultWindowHours
	}
	if windowHours > maxWindowHours {
		windowHours = maxWindowHours
	}

	now := s.now()
	summary, err = s.visits.Summarize(ctx, repository.VisitWindow{
		Since:         now.Add(-time.Duration(windowHours) * time.Hour).Unix(),
		RealtimeSince: now.Add(-realtimeWindow).Unix(),
		RecentLimit:   recentVisitsLimit,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	summary.WindowHours = windowHours
	if summary.DeviceBreakdown == nil {
		summary.DeviceBreakdown = []models.CategoryCount{}
	}
	if summary.BrowserBreakdown == nil {
		summary.BrowserBreakdown = []models.CategoryCount{}
	}
	if summary.Hourly == nil {
		summary.Hourly = []models.HourCount{}
	}
	if summary.RecentVisits == nil {
		summary.RecentVisits = []models.Visit{}
	}
	return summary, nil
}

// Realtime returns the newest visits regardless of window.
func (s *AnalyticsService) Realtime(ctx context.Context, limit int) ([]models.Visit, error) {
	if limit <= 0 {
		limit = defaultRealtimeSize
	}
	if limit > maxRealtimeSize {
		limit = maxRealtimeSize
	}
	visits, err := s.visits.Recent(ctx, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if visits == nil {
		visits = []models.Visit{}
	}
	return visits, nil
}

// Prune deletes visits older than retention and returns how many were removed.
func (s *AnalyticsService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	return s.visits.DeleteBefore(ctx, s.now().Add(-retention).Unix())
}
