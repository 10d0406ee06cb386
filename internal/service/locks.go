// Package service orchestrates the board's components behind the HTTP layer.
package service

import (
	"context"
	"log/slog"
	"sync"

	"echohole/internal/notifications"
)

const (
	lockStripes = 64
	// maxStatusRetries bounds the compare-and-set loop on status changes.
	maxStatusRetries = 3
)

// PostLocks serializes mutations of one post inside this process so events
// for that post are published in commit order. A post's id is only known once
// its insert commits, so inserts are tracked separately until their new_post
// event is out.
type PostLocks struct {
	stripes [lockStripes]sync.Mutex

	mu       sync.Mutex
	next     uint64
	creating map[uint64]chan struct{}
}

// NewPostLocks returns a striped lock set shared by the board and moderation services.
func NewPostLocks() *PostLocks {
	return &PostLocks{creating: make(map[uint64]chan struct{})}
}

// Lock acquires the stripe owning postID and returns its unlock func.
func (l *PostLocks) Lock(postID uint) func() {
	m := &l.stripes[postID%lockStripes]
	m.Lock()
	return m.Unlock
}

// BeginCreate registers a post insert. The returned func must be called exactly
// once, after the insert's creation event has been published or the insert failed.
func (l *PostLocks) BeginCreate() func() {
	l.mu.Lock()
	if l.creating == nil {
		l.creating = make(map[uint64]chan struct{})
	}
	ticket := l.next
	l.next++
	done := make(chan struct{})
	l.creating[ticket] = done
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.creating, ticket)
		l.mu.Unlock()
		close(done)
	}
}

// WaitCreates blocks until every insert registered before the call has
// finished, or ctx is done. Callers publish events for existing posts only
// after it returns.
func (l *PostLocks) WaitCreates(ctx context.Context) {
	l.mu.Lock()
	pending := make([]chan struct{}, 0, len(l.creating))
	for _, ch := range l.creating {
		pending = append(pending, ch)
	}
	l.mu.Unlock()

	for _, ch := range pending {
		select {
		case <-ch:
		case <-ctx.Done():
			return
		}
	}
}

func publish(ctx context.Context, pub notifications.Publisher, e notifications.Event) {
	if err := pub.Publish(ctx, e); err != nil {
		slog.WarnContext(ctx, "failed to publish board event",
			slog.String("event_type", e.Type),
			slog.Uint64("post_id", uint64(e.PostID)),
			slog.String("error", err.Error()))
	}
}

func clampPage(page, pageSize, defaultSize, maxSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultSize
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize
}
