package store

import (
	"context"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/rule"
	"github.com/flowboard/flowboard/engine/task"
)

// Workflows bundles the repositories behind the automation engine's store
// interface so the engine never sees individual repos.
type Workflows struct {
	tasks      *TaskRepo
	rules      *RuleRepo
	executions *ExecutionRepo
}

func NewWorkflows(db DBInterface) *Workflows {
	return &Workflows{
		tasks:      NewTaskRepo(db),
		rules:      NewRuleRepo(db),
		executions: NewExecutionRepo(db),
	}
}

func (w *Workflows) GetTask(ctx context.Context, id core.ID) (*task.Task, error) {
	return w.tasks.Get(ctx, id)
}

func (w *Workflows) UpdateTask(ctx context.Context, id core.ID, in *task.UpdateInput) (*task.Task, error) {
	return w.tasks.Update(ctx, id, in)
}

func (w *Workflows) InsertTask(ctx context.Context, in *task.CreateInput) (*task.Task, error) {
	return w.tasks.Create(ctx, in)
}

func (w *Workflows) ListEnabledRules(ctx context.Context, projectID core.ID) ([]*rule.Rule, error) {
	return w.rules.ListEnabledByProject(ctx, projectID)
}

func (w *Workflows) AppendExecution(ctx context.Context, e *rule.Execution) error {
	return w.executions.Append(ctx, e)
}
