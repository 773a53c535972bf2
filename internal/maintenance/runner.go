// Package maintenance runs the periodic sweeps that keep the in-memory
// cache and limiters from growing without bound.
package maintenance

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"portfolio/internal/logger"
)

// Task is one named sweep. Run returns how many entries it removed.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func() int
}

type TaskStats struct {
	Name    string `json:"name"`
	Runs    int64  `json:"runs"`
	Removed int64  `json:"removed"`
}

type taskState struct {
	Task
	runs    atomic.Int64
	removed atomic.Int64
}

type Runner struct {
	tasks []*taskState
	log   *zap.Logger
	wg    sync.WaitGroup
}

func NewRunner(log *zap.Logger, tasks ...Task) *Runner {
	r := &Runner{log: logger.OrNop(log)}
	for _, t := range tasks {
		if t.Run == nil || t.Interval <= 0 {
			r.log.Warn("maintenance task skipped", zap.String("task", t.Name), zap.Duration("interval", t.Interval))
			continue
		}
		r.tasks = append(r.tasks, &taskState{Task: t})
	}
	return r
}

// Start launches one ticker loop per task. The loops exit when ctx is done.
func (r *Runner) Start(ctx context.Context) {
	for _, t := range r.tasks {
		r.wg.Add(1)
		go r.loop(ctx, t)
	}
}

// Wait blocks until every loop started by Start has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) loop(ctx context.Context, t *taskState) {
	defer r.wg.Done()
	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()
	r.log.Debug("maintenance task started", zap.String("task", t.Name), zap.Duration("interval", t.Interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(t)
		}
	}
}

func (r *Runner) runOnce(t *taskState) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("maintenance task panicked", zap.String("task", t.Name), zap.Any("panic", rec))
		}
	}()
	removed := t.Run()
	t.runs.Inc()
	t.removed.Add(int64(removed))
	if removed > 0 {
		r.log.Info("maintenance sweep", zap.String("task", t.Name), zap.Int("removed", removed))
	}
}

func (r *Runner) Stats() []TaskStats {
	out := make([]TaskStats, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, TaskStats{Name: t.Name, Runs: t.runs.Load(), Removed: t.removed.Load()})
	}
	return out
}
