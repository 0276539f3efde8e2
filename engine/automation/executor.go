package automation

import (
	"context"
	"fmt"

	"github.com/flowboard/flowboard/engine/rule"
	"github.com/flowboard/flowboard/engine/task"
	"github.com/flowboard/flowboard/pkg/logger"
)

// Executor performs the side effect of a single action against the task
// store and notification collaborators.
type Executor struct {
	store     TaskStore
	notifier  Notifier
	email     EmailSender
	commenter Commenter
	clock     Clock
}

func NewExecutor(store TaskStore, notifier Notifier, email EmailSender, commenter Commenter, clock Clock) *Executor {
	return &Executor{store: store, notifier: notifier, email: email, commenter: commenter, clock: clock}
}

// Execute runs one action for the given task snapshot. A returned error
// aborts the remaining actions of the owning rule only; the orchestrator
// records it in the execution log.
func (x *Executor) Execute(ctx context.Context, t *task.Task, a *rule.Action) error {
	switch a.Type {
	case rule.ActionSendEmail:
		return x.email.SendEmail(ctx, t.ID, a.SendEmail)
	case rule.ActionSendNotification:
		return x.sendNotification(ctx, t, a.SendNotification)
	case rule.ActionCreateTask:
		return x.createTask(ctx, t, a.CreateTask)
	case rule.ActionUpdateTask:
		return x.updateTask(ctx, t, a.UpdateTask)
	case rule.ActionAssignUser:
		return x.assignUser(ctx, t, a.AssignUser)
	case rule.ActionSetDueDate:
		return x.setDueDate(ctx, t, a.SetDueDate)
	case rule.ActionChangeStatus:
		return x.changeStatus(ctx, t, a.ChangeStatus)
	case rule.ActionAddComment:
		return x.commenter.AddComment(ctx, t.ID, a.AddComment)
	default:
		logger.FromContext(ctx).Warn("skipping unrecognized action type",
			"action_type", a.Type, "task_id", t.ID)
		return nil
	}
}

func (x *Executor) sendNotification(ctx context.Context, t *task.Task, p *rule.SendNotificationParams) error {
	cfg, err := x.notifier.ChannelConfig(ctx, t.ProjectID)
	if err != nil {
		return fmt.Errorf("loading channel config: %w", err)
	}
	if cfg == nil {
		logger.FromContext(ctx).Debug("no notification channel configured",
			"project_id", t.ProjectID)
		return nil
	}
	message := p.Message
	if message == "" {
		message = t.Title
	}
	return x.notifier.Send(ctx, cfg, message)
}

func (x *Executor) createTask(ctx context.Context, t *task.Task, p *rule.CreateTaskParams) error {
	status := p.Status
	if status == "" {
		status = task.StatusTodo
	}
	assignees := p.Assignees
	if assignees == nil {
		assignees = []string{}
	}
	in := &task.CreateInput{
		ProjectID:   t.ProjectID,
		Title:       p.Title,
		Description: p.Description,
		Status:      status,
		Assignees:   assignees,
	}
	if _, err := x.store.InsertTask(ctx, in); err != nil {
		return fmt.Errorf("creating derived task: %w", err)
	}
	return nil
}

func (x *Executor) updateTask(ctx context.Context, t *task.Task, p *rule.UpdateTaskParams) error {
	in := &task.UpdateInput{
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		Assignees:   p.Assignees,
	}
	if in.IsEmpty() {
		return nil
	}
	if _, err := x.store.UpdateTask(ctx, t.ID, in); err != nil {
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

// assignUser appends the user to the assignee list unless already present.
func (x *Executor) assignUser(ctx context.Context, t *task.Task, p *rule.AssignUserParams) error {
	if p.Email == "" {
		return fmt.Errorf("assign_user requires an email")
	}
	if t.HasAssignee(p.Email) {
		return nil
	}
	assignees := append(append([]string(nil), t.Assignees...), p.Email)
	in := &task.UpdateInput{Assignees: &assignees}
	if _, err := x.store.UpdateTask(ctx, t.ID, in); err != nil {
		return fmt.Errorf("assigning user: %w", err)
	}
	return nil
}

func (x *Executor) setDueDate(ctx context.Context, t *task.Task, p *rule.SetDueDateParams) error {
	due, ok := toTime(p.DueDate)
	if !ok {
		return fmt.Errorf("set_due_date: unparseable due date %q", p.DueDate)
	}
	in := &task.UpdateInput{DueDate: &due}
	if _, err := x.store.UpdateTask(ctx, t.ID, in); err != nil {
		return fmt.Errorf("setting due date: %w", err)
	}
	return nil
}

// changeStatus overwrites the status, stamping completed_at when the task
// moves into the terminal stage and clearing it otherwise.
func (x *Executor) changeStatus(ctx context.Context, t *task.Task, p *rule.ChangeStatusParams) error {
	if !p.Status.IsValid() {
		return fmt.Errorf("change_status: unknown status %q", p.Status)
	}
	status := p.Status
	in := &task.UpdateInput{Status: &status}
	if status == task.StatusDone {
		now := x.clock.Now()
		in.CompletedAt = &now
	} else {
		in.ClearCompletedAt = true
	}
	if _, err := x.store.UpdateTask(ctx, t.ID, in); err != nil {
		return fmt.Errorf("changing status: %w", err)
	}
	return nil
}
