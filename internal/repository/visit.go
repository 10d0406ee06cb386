package repository

import (
	"context"

	"echohole/internal/models"
	"echohole/internal/observability"

	"gorm.io/gorm"
)

// breakdownLimit caps device and browser breakdown rows.
const breakdownLimit = 10

// VisitWindow bounds a summary query. All values are epoch seconds.
type VisitWindow struct {
	Since         int64
	RealtimeSince int64
	RecentLimit   int
}

// VisitRepository defines the interface for visit analytics storage.
type VisitRepository interface {
	Create(ctx context.Context, visit *models.Visit) error
	Summarize(ctx context.Context, w VisitWindow) (*models.AnalyticsSummary, error)
	Recent(ctx context.Context, limit int) ([]models.Visit, error)
	DeleteBefore(ctx context.Context, before int64) (int64, error)
}

type visitRepository struct {
	db *gorm.DB
}

// NewVisitRepository creates a new visit repository
func NewVisitRepository(db *gorm.DB) VisitRepository {
	return &visitRepository{db: db}
}

func (r *visitRepository) Create(ctx context.Context, visit *models.Visit) error {
	defer observability.TrackQuery("create", "visits")()
	return r.db.WithContext(ctx).Create(visit).Error
}

func (r *visitRepository) since(ctx context.Context, ts int64) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Visit{}).Where("created_at >= ?", ts)
}

// Summarize computes every aggregate over visits created at or after w.Since.
func (r *visitRepository) Summarize(ctx context.Context, w VisitWindow) (*models.AnalyticsSummary, error) {
	defer observability.TrackQuery("summarize", "visits")()

	s := &models.AnalyticsSummary{}

	if err := r.since(ctx, w.Since).Count(&s.TotalVisits).Error; err != nil {
		return nil, err
	}
	if err := r.since(ctx, w.Since).Where("visitor_id <> ''").
		Select("COUNT(DISTINCT visitor_id)").Scan(&s.UniqueVisitors).Error; err != nil {
		return nil, err
	}
	if err := r.since(ctx, w.Since).Where("ip_hash <> ''").
		Select("COUNT(DISTINCT ip_hash)").Scan(&s.UniqueIPs).Error; err != nil {
		return nil, err
	}
	if err := r.since(ctx, w.RealtimeSince).Count(&s.RealtimeVisits).Error; err != nil {
		return nil, err
	}

	var err error
	if s.DeviceBreakdown, err = r.breakdown(ctx, "device_model", w.Since); err != nil {
		return nil, err
	}
	if s.BrowserBreakdown, err = r.breakdown(ctx, "browser_family", w.Since); err != nil {
		return nil, err
	}

	if err := r.since(ctx, w.Since).
		Select("(created_at / 3600) % 24 AS hour, COUNT(*) AS count").
		Group("hour").
		Order("hour ASC").
		Scan(&s.Hourly).Error; err != nil {
		return nil, err
	}

	if err := r.since(ctx, w.Since).
		Order("created_at DESC").Order("id DESC").
		Limit(w.RecentLimit).
		Find(&s.RecentVisits).Error; err != nil {
		return nil, err
	}

	return s, nil
}

// breakdown groups visits by column, largest groups first. column is one of
// the fixed classification columns, never caller input.
func (r *visitRepository) breakdown(ctx context.Context, column string, since int64) ([]models.CategoryCount, error) {
	var rows []models.CategoryCount
	err := r.since(ctx, since).
		Select(column + " AS name, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Order("name ASC").
		Limit(breakdownLimit).
		Scan(&rows).Error
	return rows, err
}

func (r *visitRepository) Recent(ctx context.Context, limit int) ([]models.Visit, error) {
	var visits []models.Visit
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&visits).Error
	return visits, err
}

func (r *visitRepository) DeleteBefore(ctx context.Context, before int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.Visit{})
	return res.RowsAffected, res.Error
}
