package service

import (
	"context"
	"errors"
	"log/slog"

	"echohole/internal/models"
	"echohole/internal/moderation"
	"echohole/internal/notifications"
	"echohole/internal/observability"
	"echohole/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const (
	defaultAdminPageSize = 20
	maxAdminPageSize     = 100
)

// ModerationResult is the outcome of an administrator action.
type ModerationResult struct {
	PostID uint              `json:"post_id"`
	Status models.PostStatus `json:"status"`
}

// ModerationService applies administrator actions through the moderation machine.
type ModerationService struct {
	posts     repository.PostRepository
	machine   *moderation.Machine
	publisher notifications.Publisher
	locks     *PostLocks
}

func NewModerationService(
	posts repository.PostRepository,
	machine *moderation.Machine,
	publisher notifications.Publisher,
	locks *PostLocks,
) *ModerationService {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	if locks == nil {
		locks = NewPostLocks()
	}
	return &ModerationService{posts: posts, machine: machine, publisher: publisher, locks: locks}
}

func (s *ModerationService) Approve(ctx context.Context, postID uint) (*ModerationResult, error) {
	return s.Moderate(ctx, postID, moderation.ActionApprove)
}

func (s *ModerationService) Reject(ctx context.Context, postID uint) (*ModerationResult, error) {
	return s.Moderate(ctx, postID, moderation.ActionReject)
}

func (s *ModerationService) Delete(ctx context.Context, postID uint) (*ModerationResult, error) {
	return s.Moderate(ctx, postID, moderation.ActionDelete)
}

// Moderate applies an approve, reject or delete action to postID. Delete
// removes the post together with its likes and reports.
func (s *ModerationService) Moderate(ctx context.Context, postID uint, action moderation.Action) (result *ModerationResult, err error) {
	span, ctx := observability.NewSpan(ctx, "moderation.moderate",
		attribute.Int64("post.id", int64(postID)), attribute.String("moderation.action", string(action)))
	defer func() {
		if result != nil {
			span.AddAttributes(attribute.String("post.status", string(result.Status)))
		}
		span.SetError(err)
		span.End()
	}()

	if postID == 0 {
		return nil, models.NewValidationError("post_id is required")
	}
	switch action {
	case moderation.ActionApprove, moderation.ActionReject, moderation.ActionDelete:
	default:
		return nil, models.NewValidationError("unsupported action")
	}

	unlock := s.locks.Lock(postID)
	defer unlock()

	var tr moderation.Transition
	for attempt := 0; attempt < maxStatusRetries; attempt++ {
		tr, err = s.apply(ctx, postID, action)
		if !errors.Is(err, repository.ErrStatusConflict) {
			break
		}
		slog.DebugContext(ctx, "status changed during moderation, retrying",
			slog.Uint64("post_id", uint64(postID)), slog.Int("attempt", attempt+1))
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, models.NewNotFoundError("not found")
	case errors.Is(err, moderation.ErrInvalidTransition):
		return nil, &models.AppError{Code: models.CodeConflict, Message: "invalid transition", Err: err}
	case errors.Is(err, repository.ErrStatusConflict):
		return nil, models.NewConflictError("post changed concurrently, try again")
	case err != nil:
		return nil, models.NewInternalError(err)
	}

	observability.ModerationActions.WithLabelValues(string(action), "admin").Inc()
	slog.InfoContext(ctx, "post moderated",
		slog.Uint64("post_id", uint64(postID)),
		slog.String("action", string(action)),
		slog.String("from", string(tr.From)),
		slog.String("to", string(tr.To)))

	result = &ModerationResult{PostID: postID, Status: tr.To}
	s.locks.WaitCreates(ctx)
	publish(ctx, s.publisher, notifications.NewEvent(tr.Event, postID, result))
	return result, nil
}

func (s *ModerationService) apply(ctx context.Context, postID uint, action moderation.Action) (moderation.Transition, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return moderation.Transition{}, err
	}
	tr, err := s.machine.Apply(post.Status, action, moderation.ActorAdmin)
	if err != nil {
		return moderation.Transition{}, err
	}
	if action == moderation.ActionDelete {
		return tr, s.posts.Delete(ctx, postID)
	}
	return tr, s.posts.UpdateStatus(ctx, postID, tr.From, tr.To)
}

// ListByStatus returns a page of posts in status for review. An empty status
// lists the review queue of the active policy.
func (s *ModerationService) ListByStatus(ctx context.Context, status string, page, pageSize int) (*PostPage, error) {
	st := s.machine.ReviewQueue()
	if status != "" {
		st = models.PostStatus(status)
		if !st.Valid() {
			return nil, models.NewValidationError("invalid status")
		}
	}

	page, pageSize = clampPage(page, pageSize, defaultAdminPageSize, maxAdminPageSize)
	posts, err := s.posts.List(ctx, []models.PostStatus{st}, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return &PostPage{Page: page, PageSize: pageSize, List: posts}, nil
}

// StatusCounts returns the number of stored posts per persisted status.
func (s *ModerationService) StatusCounts(ctx context.Context) (map[models.PostStatus]int64, error) {
	counts := make(map[models.PostStatus]int64, len(models.PersistedStatuses))
	for _, st := range models.PersistedStatuses {
		n, err := s.posts.Count(ctx, []models.PostStatus{st})
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		counts[st] = n
	}
	return counts, nil
}
