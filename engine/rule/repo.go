package rule

import (
	"context"

	"github.com/flowboard/flowboard/engine/core"
)

// Repository is the persistence boundary for workflow rules. The engine only
// reads enabled rules; the rest serves the admin surface.
type Repository interface {
	Get(ctx context.Context, id core.ID) (*Rule, error)
	Create(ctx context.Context, r *Rule) error
	Update(ctx context.Context, r *Rule) error
	Delete(ctx context.Context, id core.ID) error
	ListByProject(ctx context.Context, projectID core.ID) ([]*Rule, error)
	ListEnabledByProject(ctx context.Context, projectID core.ID) ([]*Rule, error)
}

// ExecutionRepository persists the append-only execution audit log.
type ExecutionRepository interface {
	Append(ctx context.Context, e *Execution) error
	ListByRule(ctx context.Context, ruleID core.ID) ([]*Execution, error)
	ListByTask(ctx context.Context, taskID core.ID) ([]*Execution, error)
}
