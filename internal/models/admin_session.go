package models

// AdminSession is an opaque server-side admin login.
type AdminSession struct {
	ID        string `gorm:"primaryKey;size:64" json:"-"`
	Username  string `gorm:"size:100;not null" json:"username"`
	CreatedAt int64  `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt int64  `gorm:"not null;index" json:"expires_at"`
}

// Expired reports whether the session is no longer valid at now (epoch seconds).
func (s *AdminSession) Expired(now int64) bool {
	return s.ExpiresAt <= now
}
