// Package schedule re-runs tasks on cron schedules until its context ends.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"github.com/resolverqa/assessment/internal/logging"
)

var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Task is a unit of work run on a schedule.
type Task interface {
	Name() string
	// Schedule is a cron expression with an optional seconds field, or a
	// descriptor such as "@every 15m".
	Schedule() string
	Run(ctx context.Context) error
	// Timeout bounds one execution; zero means no bound.
	Timeout() time.Duration
}

// Scheduler runs registered tasks. A task still running when its next
// activation comes up is skipped for that activation.
type Scheduler struct {
	cron   *cron.Cron
	logger *log.Logger
	wg     sync.WaitGroup
	tasks  []Task
}

// New creates an idle scheduler.
func New(logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger,
	}
}

// Validate reports whether spec parses as a schedule.
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Add registers task. Tasks must be added before Start.
func (s *Scheduler) Add(task Task) error {
	if err := Validate(task.Schedule()); err != nil {
		return fmt.Errorf("failed to schedule task %s: %w", task.Name(), err)
	}
	s.tasks = append(s.tasks, task)
	return nil
}

// Start schedules every task and blocks until ctx is done, then waits for
// running executions to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, task := range s.tasks {
		if _, err := s.cron.AddFunc(task.Schedule(), func() { s.execute(ctx, task) }); err != nil {
			return fmt.Errorf("failed to schedule task %s: %w", task.Name(), err)
		}
		s.logger.Info().Str("task", task.Name()).Str("schedule", task.Schedule()).Msg("task scheduled")
	}

	s.cron.Start()
	<-ctx.Done()
	s.Stop()
	return ctx.Err()
}

func (s *Scheduler) execute(ctx context.Context, task Task) {
	if ctx.Err() != nil {
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()

	taskCtx := ctx
	if d := task.Timeout(); d > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info().Str("task", task.Name()).Msg("task started")
	err := task.Run(taskCtx)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error().Err(err).Str("task", task.Name()).Dur("duration", duration).Msg("task failed")
		return
	}
	s.logger.Info().Str("task", task.Name()).Dur("duration", duration).Msg("task completed")
}

// Stop stops scheduling and waits for running tasks.
func (s *Scheduler) Stop() {
	done := s.cron.Stop()
	s.wg.Wait()
	<-done.Done()
	s.logger.Info().Msg("scheduler stopped")
}

// Func adapts a function to a Task.
type Func struct {
	TaskName string
	Spec     string
	Limit    time.Duration
	Fn       func(ctx context.Context) error
}

func (f Func) Name() string                  { return f.TaskName }
func (f Func) Schedule() string              { return f.Spec }
func (f Func) Timeout() time.Duration        { return f.Limit }
func (f Func) Run(ctx context.Context) error { return f.Fn(ctx) }
