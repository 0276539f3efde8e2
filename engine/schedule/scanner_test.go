package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/flowboard/engine/automation"
	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/task"
)

type fakeLister struct {
	due     []*task.Task
	overdue []*task.Task
	dueErr  error

	dueCalls [][2]time.Time
}

func (f *fakeLister) ListDueBetween(_ context.Context, from, to time.Time) ([]*task.Task, error) {
	f.dueCalls = append(f.dueCalls, [2]time.Time{from, to})
	return f.due, f.dueErr
}

func (f *fakeLister) ListOverdue(_ context.Context, _ time.Time) ([]*task.Task, error) {
	return f.overdue, nil
}

type eventRecorder struct {
	events []*automation.Event
}

func (r *eventRecorder) ProcessTaskEvent(_ context.Context, event *automation.Event) {
	r.events = append(r.events, event)
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newScanTask(due time.Time) *task.Task {
	return &task.Task{
		ID:        core.MustNewID(),
		ProjectID: core.MustNewID(),
		Title:     "Renew certificate",
		Status:    task.StatusTodo,
		DueDate:   &due,
	}
}

func TestScanner_Scan(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("Should emit updated events with identical pre-image", func(t *testing.T) {
		soon := newScanTask(now.Add(6 * time.Hour))
		late := newScanTask(now.Add(-2 * time.Hour))
		lister := &fakeLister{due: []*task.Task{soon}, overdue: []*task.Task{late}}
		recorder := &eventRecorder{}
		scanner := NewScanner(lister, recorder, WithClock(fixedClock{now: now}))
		scanner.Scan(context.Background())
		require.Len(t, recorder.events, 2)
		for _, ev := range recorder.events {
			assert.Equal(t, automation.EventUpdated, ev.Type)
			require.NotNil(t, ev.OldTask)
			assert.Equal(t, ev.Task.ID, ev.OldTask.ID)
			assert.Equal(t, ev.Task.Status, ev.OldTask.Status)
		}
		assert.Equal(t, soon.ID, recorder.events[0].Task.ID)
		assert.Equal(t, late.ID, recorder.events[1].Task.ID)
	})

	t.Run("Should query the full approaching window from scan time", func(t *testing.T) {
		lister := &fakeLister{}
		scanner := NewScanner(lister, &eventRecorder{}, WithClock(fixedClock{now: now}))
		scanner.Scan(context.Background())
		require.Len(t, lister.dueCalls, 1)
		assert.Equal(t, now, lister.dueCalls[0][0])
		assert.Equal(t, now.Add(24*time.Hour), lister.dueCalls[0][1])
	})

	t.Run("Should still scan overdue tasks when approaching query fails", func(t *testing.T) {
		late := newScanTask(now.Add(-30 * time.Minute))
		lister := &fakeLister{dueErr: errors.New("db down"), overdue: []*task.Task{late}}
		recorder := &eventRecorder{}
		scanner := NewScanner(lister, recorder, WithClock(fixedClock{now: now}))
		scanner.Scan(context.Background())
		require.Len(t, recorder.events, 1)
		assert.Equal(t, late.ID, recorder.events[0].Task.ID)
	})

	t.Run("Should stop emitting once the context is canceled", func(t *testing.T) {
		lister := &fakeLister{due: []*task.Task{
			newScanTask(now.Add(time.Hour)),
			newScanTask(now.Add(2 * time.Hour)),
		}}
		recorder := &eventRecorder{}
		scanner := NewScanner(lister, recorder, WithClock(fixedClock{now: now}))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		scanner.Scan(ctx)
		assert.Empty(t, recorder.events)
	})
}

func TestScanner_Lifecycle(t *testing.T) {
	t.Run("Should reject a second start", func(t *testing.T) {
		scanner := NewScanner(&fakeLister{}, &eventRecorder{})
		ctx := context.Background()
		require.NoError(t, scanner.Start(ctx))
		defer scanner.Stop()
		assert.Error(t, scanner.Start(ctx))
	})

	t.Run("Should reject an invalid cron spec", func(t *testing.T) {
		scanner := NewScanner(&fakeLister{}, &eventRecorder{}, WithCronSpec("not a spec"))
		assert.Error(t, scanner.Start(context.Background()))
	})

	t.Run("Should allow stop without start", func(t *testing.T) {
		scanner := NewScanner(&fakeLister{}, &eventRecorder{})
		scanner.Stop()
	})
}
