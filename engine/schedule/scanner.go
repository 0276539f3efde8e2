package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/flowboard/flowboard/engine/automation"
	"github.com/flowboard/flowboard/engine/task"
	"github.com/flowboard/flowboard/pkg/logger"
)

const (
	// DefaultCronSpec runs the scan every 15 minutes.
	DefaultCronSpec = "*/15 * * * *"

	// approachingWindow is how far ahead the scanner looks for
	// due_date_approaching rules.
	approachingWindow = 24 * time.Hour
)

// TaskLister is the slice of task persistence the scanner needs.
type TaskLister interface {
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*task.Task, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]*task.Task, error)
}

// EventProcessor receives the synthetic events the scanner emits. Satisfied
// by automation.Engine.
type EventProcessor interface {
	ProcessTaskEvent(ctx context.Context, event *automation.Event)
}

// Scanner periodically re-feeds tasks with near or past due dates through the
// automation engine so due-date rules fire without any task mutation.
type Scanner struct {
	tasks     TaskLister
	processor EventProcessor
	clock     automation.Clock
	spec      string

	cron *cron.Cron

	mu      sync.Mutex
	running bool
	// scanning guards against a slow scan overlapping the next tick.
	scanning bool
}

type Option func(*Scanner)

// WithCronSpec overrides the scan cadence. Accepts a standard 5-field spec.
func WithCronSpec(spec string) Option {
	return func(s *Scanner) { s.spec = spec }
}

func WithClock(clock automation.Clock) Option {
	return func(s *Scanner) { s.clock = clock }
}

func NewScanner(tasks TaskLister, processor EventProcessor, opts ...Option) *Scanner {
	s := &Scanner{
		tasks:     tasks,
		processor: processor,
		clock:     automation.SystemClock(),
		spec:      DefaultCronSpec,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the cron job and begins scanning. The context is captured
// for the lifetime of the scanner and carries the logger.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("due-date scanner already started")
	}
	c := cron.New()
	_, err := c.AddFunc(s.spec, func() {
		s.runScan(ctx)
	})
	if err != nil {
		return fmt.Errorf("registering scan job: %w", err)
	}
	c.Start()
	s.cron = c
	s.running = true
	logger.FromContext(ctx).Info("due-date scanner started", "spec", s.spec)
	return nil
}

// Stop halts the cron schedule and waits for an in-flight scan to finish.
func (s *Scanner) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.running = false
	s.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

func (s *Scanner) runScan(ctx context.Context) {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		logger.FromContext(ctx).Warn("due-date scan still in flight, skipping tick")
		return
	}
	s.scanning = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.scanning = false
		s.mu.Unlock()
	}()
	s.Scan(ctx)
}

// Scan performs one pass: every open task due within the approaching window
// or already overdue is re-presented to the engine as an updated event with
// an identical pre-image. Delta-based triggers see no change and stay quiet;
// due-date triggers evaluate against the scan time. Plain task_updated rules
// also match these events, so they re-fire on every tick for near-due and
// overdue tasks.
func (s *Scanner) Scan(ctx context.Context) {
	log := logger.FromContext(ctx)
	now := s.clock.Now()

	approaching, err := s.tasks.ListDueBetween(ctx, now, now.Add(approachingWindow))
	if err != nil {
		log.Error("listing tasks with approaching due dates failed", "error", err)
	} else {
		s.emit(ctx, approaching)
	}

	overdue, err := s.tasks.ListOverdue(ctx, now)
	if err != nil {
		log.Error("listing overdue tasks failed", "error", err)
		return
	}
	s.emit(ctx, overdue)
}

func (s *Scanner) emit(ctx context.Context, tasks []*task.Task) {
	for _, t := range tasks {
		if ctx.Err() != nil {
			return
		}
		s.processor.ProcessTaskEvent(ctx, &automation.Event{
			Type:    automation.EventUpdated,
			Task:    t,
			OldTask: t.Clone(),
		})
	}
}
