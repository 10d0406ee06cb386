// Package seed provides database seeding utilities for development and demos.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"echohole/internal/analytics"
	"echohole/internal/contentfilter"
	"echohole/internal/identity"
	"echohole/internal/models"
	"echohole/internal/moderation"
	"echohole/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	Posts       int
	Visitors    int
	Visits      int
	ShouldClean bool
}

// Summary reports what a run created.
type Summary struct {
	Posts   int
	Likes   int
	Reports int
	Visits  int
}

// Distribution weights the initial status of seeded posts.
type Distribution struct {
	Published int
	Approved  int
	Pending   int
	Hidden    int
}

var defaultDistribution = Distribution{Published: 6, Approved: 2, Pending: 1, Hidden: 1}

var pagePaths = []string{"/", "/", "/", "/about", "/submit", "/admin"}

// computeCounts splits n posts by d, giving any remainder to published.
func computeCounts(n int, d Distribution) (published, approved, pending, hidden int) {
	total := d.Published + d.Approved + d.Pending + d.Hidden
	if total <= 0 || n <= 0 {
		return max(n, 0), 0, 0, 0
	}
	approved = n * d.Approved / total
	pending = n * d.Pending / total
	hidden = n * d.Hidden / total
	published = n - approved - pending - hidden
	return published, approved, pending, hidden
}

// Seeder writes demo data through the board's repositories.
type Seeder struct {
	db      *gorm.DB
	posts   repository.PostRepository
	visits  repository.VisitRepository
	filter  *contentfilter.Filter
	hasher  *identity.Hasher
	machine *moderation.Machine
	faker   *gofakeit.Faker
}

// NewSeeder returns a Seeder bound to db. Post text passes through filter so
// seeded content is masked the same way submissions are. A zero seed picks
// one from the clock.
func NewSeeder(db *gorm.DB, filter *contentfilter.Filter, hasher *identity.Hasher, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{
		db:      db,
		posts:   repository.NewPostRepository(db),
		visits:  repository.NewVisitRepository(db),
		filter:  filter,
		hasher:  hasher,
		machine: moderation.NewMachine(moderation.Policy{}),
		faker:   gofakeit.New(seed),
	}
}

// ClearAll removes every post, like, report and visit. Admin sessions are kept.
func (s *Seeder) ClearAll() error {
	tx := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.Like{}, &models.Report{}, &models.Post{}, &models.Visit{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run seeds according to opts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	visitors := s.identities(max(opts.Visitors, 1))
	summary := &Summary{}

	posts, err := s.seedPosts(ctx, opts.Posts, visitors)
	if err != nil {
		return nil, err
	}
	summary.Posts = len(posts)

	for _, post := range posts {
		likes, reports, err := s.seedReactions(ctx, post, visitors)
		if err != nil {
			return nil, err
		}
		summary.Likes += likes
		summary.Reports += reports
	}

	summary.Visits, err = s.seedVisits(ctx, opts.Visits, visitors)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "seed complete",
		slog.Int("posts", summary.Posts), slog.Int("likes", summary.Likes),
		slog.Int("reports", summary.Reports), slog.Int("visits", summary.Visits))
	return summary, nil
}

type visitor struct {
	hash      string
	userAgent string
}

func (s *Seeder) identities(n int) []visitor {
	out := make([]visitor, n)
	for i := range out {
		ua := s.faker.UserAgent()
		out[i] = visitor{hash: s.hasher.Hash(s.faker.IPv4Address(), ua), userAgent: ua}
	}
	return out
}

func (s *Seeder) pick(vs []visitor) visitor {
	return vs[s.faker.Number(0, len(vs)-1)]
}

// BuildContent returns post text that already passed the content filter.
func (s *Seeder) BuildContent() string {
	for {
		res := s.filter.Validate(s.faker.Paragraph(1, s.faker.Number(1, 3), s.faker.Number(4, 14), " "))
		if res.OK {
			return res.Text
		}
	}
}

func (s *Seeder) seedPosts(ctx context.Context, n int, visitors []visitor) ([]*models.Post, error) {
	published, approved, pending, hidden := computeCounts(n, defaultDistribution)
	plan := []struct {
		status models.PostStatus
		count  int
	}{
		{models.PostStatusPublished, published},
		{models.PostStatusApproved, approved},
		{models.PostStatusPending, pending},
		{models.PostStatusHidden, hidden},
	}

	posts := make([]*models.Post, 0, n)
	for _, p := range plan {
		for range p.count {
			post := &models.Post{
				Content: s.BuildContent(),
				Status:  p.status,
				IPHash:  s.pick(visitors).hash,
			}
			if err := s.posts.Create(ctx, post); err != nil {
				return nil, fmt.Errorf("create post: %w", err)
			}
			posts = append(posts, post)
		}
	}
	return posts, nil
}

// seedReactions adds likes from distinct visitors and, for a few posts,
// user reports applied through the moderation machine.
func (s *Seeder) seedReactions(ctx context.Context, post *models.Post, visitors []visitor) (int, int, error) {
	likes := 0
	if moderation.Visible(post.Status) {
		want := s.faker.Number(0, min(len(visitors), 12))
		for _, idx := range s.faker.Rand.Perm(len(visitors))[:want] {
			if _, err := s.posts.Like(ctx, post.ID, visitors[idx].hash); err != nil {
				return likes, 0, fmt.Errorf("like post %d: %w", post.ID, err)
			}
			likes++
		}
	}

	reports := 0
	if s.faker.Number(1, 10) == 1 {
		for range s.faker.Number(1, 3) {
			report := &models.Report{
				PostID: post.ID,
				IPHash: s.pick(visitors).hash,
				Reason: s.faker.Sentence(s.faker.Number(2, 8)),
			}
			_, err := s.posts.Report(ctx, report, func(cur models.PostStatus) (models.PostStatus, error) {
				tr, err := s.machine.Apply(cur, moderation.ActionReport, moderation.ActorUser)
				return tr.To, err
			})
			if err != nil {
				return likes, reports, fmt.Errorf("report post %d: %w", post.ID, err)
			}
			reports++
		}
	}
	return likes, reports, nil
}

func (s *Seeder) seedVisits(ctx context.Context, n int, visitors []visitor) (int, error) {
	now := time.Now()
	visitorIDs := make([]string, len(visitors))
	for i := range visitorIDs {
		visitorIDs[i] = s.faker.UUID()
	}

	for i := range n {
		idx := s.faker.Number(0, len(visitors)-1)
		v := visitors[idx]
		device, browser := analytics.Classify(v.userAgent)
		visit := &models.Visit{
			VisitorID:     visitorIDs[idx],
			IPHash:        v.hash,
			UserAgent:     v.userAgent,
			DeviceModel:   device,
			BrowserFamily: browser,
			Referer:       s.faker.URL(),
			PagePath:      pagePaths[s.faker.Number(0, len(pagePaths)-1)],
			CreatedAt:     s.faker.DateRange(now.Add(-48*time.Hour), now).Unix(),
		}
		if err := s.visits.Create(ctx, visit); err != nil {
			return i, fmt.Errorf("create visit: %w", err)
		}
	}
	return n, nil
}
