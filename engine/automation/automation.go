package automation

import (
	"context"
	"time"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/notify"
	"github.com/flowboard/flowboard/engine/rule"
	"github.com/flowboard/flowboard/engine/task"
)

// -----------------------------------------------------------------------------
// Events
// -----------------------------------------------------------------------------

// EventType classifies the task mutation that produced an event.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
)

// Event is the lifecycle notification handed to the engine by a task-mutation
// endpoint (or the due-date scanner). Task is the post-mutation snapshot;
// OldTask is the pre-mutation snapshot and is nil for created events.
type Event struct {
	Type    EventType
	Task    *task.Task
	OldTask *task.Task
}

// -----------------------------------------------------------------------------
// Collaborator interfaces
// -----------------------------------------------------------------------------

// TaskStore is the engine's view of task and rule persistence. The concrete
// implementation lives in engine/infra/store.
type TaskStore interface {
	GetTask(ctx context.Context, id core.ID) (*task.Task, error)
	UpdateTask(ctx context.Context, id core.ID, in *task.UpdateInput) (*task.Task, error)
	InsertTask(ctx context.Context, in *task.CreateInput) (*task.Task, error)
	ListEnabledRules(ctx context.Context, projectID core.ID) ([]*rule.Rule, error)
	AppendExecution(ctx context.Context, e *rule.Execution) error
}

// Notifier delivers channel notifications. A nil config from ChannelConfig
// means the project has no channel configured and sends are silently skipped.
type Notifier interface {
	ChannelConfig(ctx context.Context, projectID core.ID) (*notify.ChannelConfig, error)
	Send(ctx context.Context, cfg *notify.ChannelConfig, message string) error
}

// EmailSender dispatches send_email actions to an external mail service.
type EmailSender interface {
	SendEmail(ctx context.Context, taskID core.ID, p *rule.SendEmailParams) error
}

// Commenter dispatches add_comment actions to the comments collaborator.
type Commenter interface {
	AddComment(ctx context.Context, taskID core.ID, p *rule.AddCommentParams) error
}

// Clock abstracts time.Now so due-date triggers and completion stamping are
// testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }
