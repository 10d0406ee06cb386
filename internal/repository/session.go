package repository

import (
	"context"

	"echohole/internal/models"

	"gorm.io/gorm"
)

// SessionRepository stores admin login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.AdminSession) error
	Get(ctx context.Context, id string) (*models.AdminSession, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now int64) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new admin session repository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.AdminSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.AdminSession, error) {
	var s models.AdminSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AdminSession{}).Error
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.AdminSession{})
	return res.RowsAffected, res.Error
}
