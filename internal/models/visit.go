package models

// Visit is an append-only page view record.
type Visit struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	VisitorID     string `gorm:"size:64;index" json:"visitor_id"`
	IPHash        string `gorm:"size:64;index" json:"ip_hash"`
	UserAgent     string `gorm:"type:text" json:"user_agent"`
	DeviceModel   string `gorm:"size:32" json:"device_model"`
	BrowserFamily string `gorm:"size:32" json:"browser_family"`
	Referer       string `gorm:"type:text" json:"referer"`
	PagePath      string `gorm:"size:512" json:"page_path"`
	CreatedAt     int64  `gorm:"autoCreateTime;index" json:"created_at"`
}

// CategoryCount is one row of a grouped breakdown.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// HourCount is the number of visits within one UTC hour of day.
type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// AnalyticsSummary aggregates visits over a trailing window.
type AnalyticsSummary struct {
	WindowHours      int             `json:"window_hours"`
	TotalVisits      int64           `json:"total_visits"`
	UniqueVisitors   int64           `json:"unique_visitors"`
	UniqueIPs        int64           `json:"unique_ips"`
	RealtimeVisits   int64           `json:"realtime_visits"`
	DeviceBreakdown  []CategoryCount `json:"device_breakdown"`
	BrowserBreakdown []CategoryCount `json:"browser_breakdown"`
	Hourly           []HourCount     `json:"hourly"`
	RecentVisits     []Visit         `json:"recent_visits"`
}
