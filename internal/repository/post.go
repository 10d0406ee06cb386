// Package repository provides data access layer implementations for the board.
package repository

import (
	"context"
	"errors"
	"fmt"

	"echohole/internal/database"
	"echohole/internal/models"
	"echohole/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrAlreadyLiked is returned when an identity likes a post twice.
	ErrAlreadyLiked = errors.New("already liked")
	// ErrStatusConflict is returned when a post's status changed underneath a compare-and-set.
	ErrStatusConflict = errors.New("post status changed concurrently")
)

// NextStatus computes the status a report moves a post to.
type NextStatus func(current models.PostStatus) (models.PostStatus, error)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, statuses []models.PostStatus, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context, statuses []models.PostStatus) (int64, error)
	Like(ctx context.Context, postID uint, ipHash string) (int64, error)
	Report(ctx context.Context, report *models.Report, next NextStatus) (*models.Post, error)
	UpdateStatus(ctx context.Context, id uint, from, to models.PostStatus) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, statuses []models.PostStatus, limit, offset int) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Count(ctx context.Context, statuses []models.PostStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("status IN ?", statuses).Count(&n).Error
	return n, err
}

// Like inserts the like row and bumps the counter in one transaction. The
// primary key on (post_id, ip_hash) decides duplicates.
func (r *postRepository) Like(ctx context.Context, postID uint, ipHash string) (int64, error) {
	defer observability.TrackQuery("like", "likes")()

	var likes int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return err
		}

		res := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Like{PostID: postID, IPHash: ipHash})
		if res.Error != nil {
			if database.IsUniqueViolation(res.Error) {
				return ErrAlreadyLiked
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyLiked
		}

		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Select("like_count").Where("id = ?", postID).Scan(&likes).Error
	})
	if err != nil {
		return 0, err
	}
	return likes, nil
}

// Report records report, increments the report counter and moves the post to
// the status returned by next, guarded by a compare-and-set on the status read.
func (r *postRepository) Report(ctx context.Context, report *models.Report, next NextStatus) (*models.Post, error) {
	defer observability.TrackQuery("report", "reports")()

	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, report.PostID).Error; err != nil {
			return err
		}
		to, err := next(post.Status)
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(report).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Post{}).
			Where("id = ? AND status = ?", post.ID, post.Status).
			Updates(map[string]any{
				"report_count": gorm.Expr("report_count + 1"),
				"status":       to,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		return tx.First(&post, post.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdateStatus moves a post from one status to another. It returns
// ErrStatusConflict when the post is no longer in from and
// gorm.ErrRecordNotFound when it does not exist.
func (r *postRepository) UpdateStatus(ctx context.Context, id uint, from, to models.PostStatus) error {
	defer observability.TrackQuery("update_status", "posts")()

	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrStatusConflict
}

// Delete removes the post with its likes and reports.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return fmt.Errorf("delete likes: %w", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Report{}).Error; err != nil {
			return fmt.Errorf("delete reports: %w", err)
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
