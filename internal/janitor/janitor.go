// Package janitor runs periodic cleanup passes: expired admin sessions and
// stale rate-limit buckets.
package janitor

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Task is one periodic cleanup job. Run returns the number of items removed.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) (int64, error)
}

// Janitor drives a set of Tasks on their own tickers.
type Janitor struct {
	tasks []Task
	wg    sync.WaitGroup
}

// New returns a Janitor for tasks. Tasks with a non-positive interval are skipped.
func New(tasks ...Task) *Janitor {
	j := &Janitor{}
	for _, t := range tasks {
		if t.Interval > 0 && t.Run != nil {
			j.tasks = append(j.tasks, t)
		}
	}
	return j
}

// Start launches one goroutine per task. They stop when ctx is cancelled.
func (j *Janitor) Start(ctx context.Context) {
	for _, t := range j.tasks {
		j.wg.Add(1)
		go j.loop(ctx, t)
	}
}

// Wait blocks until every task loop has returned.
func (j *Janitor) Wait() {
	j.wg.Wait()
}

func (j *Janitor) loop(ctx context.Context, t Task) {
	defer j.wg.Done()
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			RunOnce(ctx, t)
		}
	}
}

// RunOnce performs one pass of t, logging the outcome. A panicking task is
// recovered so the loop keeps running.
func RunOnce(ctx context.Context, t Task) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic in janitor task",
				slog.String("task", t.Name), slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
		}
	}()

	n, err := t.Run(ctx)
	if err != nil {
		slog.WarnContext(ctx, "janitor task failed", slog.String("task", t.Name), slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "janitor task removed entries", slog.String("task", t.Name), slog.Int64("removed", n))
	}
}
