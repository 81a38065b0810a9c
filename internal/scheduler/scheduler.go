package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is a unit of periodic work
type Task interface {
	Run(ctx context.Context) error
	Interval() time.Duration
	Name() string
}

// ErrFatal marks a task error that cannot be fixed by running again. A task
// returning an error wrapping ErrFatal stops every task in the scheduler.
var ErrFatal = errors.New("fatal task error")

// Scheduler runs each task immediately and then on its own interval until
// stopped. A failing run is logged and the task keeps its schedule, unless
// the error wraps ErrFatal.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	tasks  []Task

	mu      sync.Mutex
	started bool
}

// New creates a scheduler whose tasks stop when ctx is cancelled or Stop is called
func New(ctx context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		group:  group,
	}
}

// AddTask registers a task. Tasks added after Start are not run.
func (s *Scheduler) AddTask(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

// Start launches every registered task; calling it twice is a no-op
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	for _, task := range s.tasks {
		s.group.Go(func() error {
			return s.runTask(task)
		})
	}
	slog.Info("Task scheduler started", "task_count", len(s.tasks))
}

// Done is closed once the scheduler is stopping, either from Stop, the
// parent context, or a fatal task error
func (s *Scheduler) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Stop cancels all tasks and waits for in-flight runs to return. It returns
// the first fatal task error, if any.
func (s *Scheduler) Stop() error {
	s.cancel()
	err := s.group.Wait()
	slog.Info("Task scheduler stopped")
	return err
}

func (s *Scheduler) runTask(task Task) error {
	interval := task.Interval()
	if interval <= 0 {
		slog.Warn("Task has no interval, running once", "task", task.Name())
		return s.runOnce(task)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.runOnce(task); err != nil {
		return err
	}
	for {
		select {
		case <-s.ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.runOnce(task); err != nil {
				return err
			}
		}
	}
}

// runOnce returns only fatal errors; anything else is logged
func (s *Scheduler) runOnce(task Task) error {
	if s.ctx.Err() != nil {
		return nil
	}
	err := task.Run(s.ctx)
	if err == nil || s.ctx.Err() != nil {
		return nil
	}
	if errors.Is(err, ErrFatal) {
		slog.Error("Task failed, stopping scheduler", "task", task.Name(), "error", err)
		return fmt.Errorf("task %s: %w", task.Name(), err)
	}
	slog.Error("Error running task", "task", task.Name(), "error", err)
	return nil
}
