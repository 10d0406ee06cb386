// Package models contains data structures for the board's domain models.
package models

// PostStatus is the moderation state of a post.
type PostStatus string

// Post lifecycle states. PostStatusDeleted is terminal and never persisted.
const (
	PostStatusPending   PostStatus = "pending"
	PostStatusPublished PostStatus = "published"
	PostStatusReported  PostStatus = "reported"
	PostStatusApproved  PostStatus = "approved"
	PostStatusRejected  PostStatus = "rejected"
	PostStatusHidden    PostStatus = "hidden"
	PostStatusDeleted   PostStatus = "deleted"
)

// PersistedStatuses lists every status a stored post can be in.
var PersistedStatuses = []PostStatus{
	PostStatusPending, PostStatusPublished, PostStatusReported,
	PostStatusApproved, PostStatusRejected, PostStatusHidden,
}

// Valid reports whether s is a known persisted status.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusPending, PostStatusPublished, PostStatusReported,
		PostStatusApproved, PostStatusRejected, PostStatusHidden:
		return true
	}
	return false
}

// Post represents an anonymous board post.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Status      PostStatus `gorm:"size:16;not null;index" json:"status"`
	LikeCount   int64      `gorm:"not null;default:0" json:"like_count"`
	ReportCount int64      `gorm:"not null;default:0" json:"report_count"`
	// IPHash identifies the author. Never serialized.
	IPHash    string `gorm:"size:64;not null;index" json:"-"`
	CreatedAt int64  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt int64  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Like records that an identity liked a post. The composite key enforces one like per identity.
type Like struct {
	PostID    uint   `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	IPHash    string `gorm:"primaryKey;size:64" json:"-"`
	CreatedAt int64  `gorm:"autoCreateTime" json:"created_at"`
	Post      Post   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// MaxReportReasonLength bounds the stored report reason, in characters.
const MaxReportReasonLength = 200

// Report is a user complaint about a post.
type Report struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PostID    uint   `gorm:"not null;index" json:"post_id"`
	IPHash    string `gorm:"size:64;not null" json:"-"`
	Reason    string `gorm:"size:200" json:"reason"`
	CreatedAt int64  `gorm:"autoCreateTime" json:"created_at"`
	Post      Post   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}
