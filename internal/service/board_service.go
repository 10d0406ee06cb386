package service

import (
	"context"
	"errors"
	"log/slog"

	"echohole/internal/contentfilter"
	"echohole/internal/models"
	"echohole/internal/moderation"
	"echohole/internal/notifications"
	"echohole/internal/observability"
	"echohole/internal/ratelimit"
	"echohole/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const (
	defaultPublicPageSize = 20
	maxPublicPageSize     = 50
)

// PostPage is one page of a post listing.
type PostPage struct {
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	List     []*models.Post `json:"list"`
}

// ReportResult is the post state after a report was recorded.
type ReportResult struct {
	Status  models.PostStatus `json:"status"`
	Reports int64             `json:"reports"`
}

// BoardService implements the public operations: submit, list, like and report.
type BoardService struct {
	posts     repository.PostRepository
	limiter   *ratelimit.Limiter
	filter    *contentfilter.Filter
	machine   *moderation.Machine
	publisher notifications.Publisher
	locks     *PostLocks
}

func NewBoardService(
	posts repository.PostRepository,
	limiter *ratelimit.Limiter,
	filter *contentfilter.Filter,
	machine *moderation.Machine,
	publisher notifications.Publisher,
	locks *PostLocks,
) *BoardService {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	if locks == nil {
		locks = NewPostLocks()
	}
	return &BoardService{
		posts:     posts,
		limiter:   limiter,
		filter:    filter,
		machine:   machine,
		publisher: publisher,
		locks:     locks,
	}
}

// Submit rate limits the caller, sanitizes content and stores a new post.
// Limiter store failures let the submission through.
func (s *BoardService) Submit(ctx context.Context, ipHash, content string) (post *models.Post, err error) {
	span, ctx := observability.NewSpan(ctx, "board.submit")
	defer func() {
		if post != nil {
			span.AddAttributes(attribute.Int64("post.id", int64(post.ID)), attribute.String("post.status", string(post.Status)))
		}
		span.SetError(err)
		span.End()
	}()

	if s.limiter != nil {
		d, err := s.limiter.Check(ctx, ratelimit.ActionSubmit, ipHash)
		switch {
		case err != nil:
			observability.RateLimitDecisions.WithLabelValues(ratelimit.ActionSubmit, "error").Inc()
			slog.WarnContext(ctx, "rate limit store error, allowing submission", slog.String("error", err.Error()))
		case !d.Allowed:
			observability.RateLimitDecisions.WithLabelValues(ratelimit.ActionSubmit, "denied").Inc()
			observability.PostSubmissions.WithLabelValues("rate_limited").Inc()
			return nil, models.NewRateLimitedError(d.RetryAfter)
		default:
			observability.RateLimitDecisions.WithLabelValues(ratelimit.ActionSubmit, "allowed").Inc()
		}
	}

	res := s.filter.Validate(content)
	if !res.OK {
		observability.PostSubmissions.WithLabelValues("rejected").Inc()
		return nil, models.NewValidationError(res.Reason)
	}

	post = &models.Post{
		Content: res.Text,
		Status:  s.machine.InitialStatus(),
		IPHash:  ipHash,
	}
	created := s.locks.BeginCreate()
	defer created()
	if err := s.posts.Create(ctx, post); err != nil {
		observability.PostSubmissions.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}
	observability.PostSubmissions.WithLabelValues("accepted").Inc()

	// Not under the post's stripe: a report holding it waits in WaitCreates
	// for this publish.
	if moderation.Visible(post.Status) {
		publish(ctx, s.publisher, notifications.NewEvent(notifications.EventNewPost, post.ID, post))
	}
	return post, nil
}

// List returns a page of publicly visible posts, newest first. An empty
// status lists every visible status.
func (s *BoardService) List(ctx context.Context, status string, page, pageSize int) (*PostPage, error) {
	statuses := moderation.VisibleStatuses()
	if status != "" {
		st := models.PostStatus(status)
		if !moderation.Visible(st) {
			return nil, models.NewValidationError("invalid status")
		}
		statuses = []models.PostStatus{st}
	}

	page, pageSize = clampPage(page, pageSize, defaultPublicPageSize, maxPublicPageSize)
	posts, err := s.posts.List(ctx, statuses, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return &PostPage{Page: page, PageSize: pageSize, List: posts}, nil
}

// Like records one like per identity and returns the new like count.
func (s *BoardService) Like(ctx context.Context, ipHash string, postID uint) (int64, error) {
	if postID == 0 {
		return 0, models.NewValidationError("post_id is required")
	}

	likes, err := s.posts.Like(ctx, postID, ipHash)
	switch {
	case errors.Is(err, repository.ErrAlreadyLiked):
		observability.PostLikes.WithLabelValues("duplicate").Inc()
		return 0, models.NewConflictError("already liked")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return 0, models.NewNotFoundError("not found")
	case err != nil:
		observability.PostLikes.WithLabelValues("error").Inc()
		return 0, models.NewInternalError(err)
	}
	observability.PostLikes.WithLabelValues("ok").Inc()
	return likes, nil
}

// Report stores a report against postID and applies the report transition.
// Reasons longer than models.MaxReportReasonLength characters are truncated.
func (s *BoardService) Report(ctx context.Context, ipHash string, postID uint, reason string) (result *ReportResult, err error) {
	span, ctx := observability.NewSpan(ctx, "board.report", attribute.Int64("post.id", int64(postID)))
	defer func() {
		if result != nil {
			span.AddAttributes(attribute.String("post.status", string(result.Status)), attribute.Int64("post.reports", result.Reports))
		}
		span.SetError(err)
		span.End()
	}()

	if postID == 0 {
		return nil, models.NewValidationError("post_id is required")
	}
	reason = truncateRunes(reason, models.MaxReportReasonLength)

	unlock := s.locks.Lock(postID)
	defer unlock()

	var (
		post *models.Post
		tr   moderation.Transition
	)
	next := func(current models.PostStatus) (models.PostStatus, error) {
		tr, err = s.machine.Apply(current, moderation.ActionReport, moderation.ActorUser)
		if err != nil {
			return "", err
		}
		return tr.To, nil
	}

	for attempt := 0; attempt < maxStatusRetries; attempt++ {
		report := &models.Report{PostID: postID, IPHash: ipHash, Reason: reason}
		post, err = s.posts.Report(ctx, report, next)
		if !errors.Is(err, repository.ErrStatusConflict) {
			break
		}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, models.NewNotFoundError("not found")
	case errors.Is(err, moderation.ErrInvalidTransition):
		return nil, models.NewConflictError("post cannot be reported")
	case errors.Is(err, repository.ErrStatusConflict):
		return nil, models.NewConflictError("post changed concurrently, try again")
	case err != nil:
		return nil, models.NewInternalError(err)
	}

	observability.ModerationActions.WithLabelValues(string(moderation.ActionReport), "user").Inc()
	result = &ReportResult{Status: post.Status, Reports: post.ReportCount}
	s.locks.WaitCreates(ctx)
	publish(ctx, s.publisher, notifications.NewEvent(tr.Event, post.ID, result))
	return result, nil
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
