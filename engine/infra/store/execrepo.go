package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/rule"
)

// ExecutionRepo implements rule.ExecutionRepository. The table is append-only;
// there is no update or delete path.
type ExecutionRepo struct {
	db DBInterface
}

func NewExecutionRepo(db DBInterface) *ExecutionRepo {
	return &ExecutionRepo{db: db}
}

const executionColumns = "id, rule_id, task_id, success, actions_executed, error, created_at"

func (r *ExecutionRepo) Append(ctx context.Context, e *rule.Execution) error {
	if e.ID.IsZero() {
		e.ID = core.MustNewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	errCol := sql.NullString{String: e.Error, Valid: e.Error != ""}
	q, args, err := squirrel.Insert("workflow_executions").
		Columns("id", "rule_id", "task_id", "success", "actions_executed", "error", "created_at").
		Values(e.ID, e.RuleID, e.TaskID, e.Success, e.ActionsExecuted, errCol, e.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("inserting execution: %w", err)
	}
	return nil
}

func (r *ExecutionRepo) ListByRule(ctx context.Context, ruleID core.ID) ([]*rule.Execution, error) {
	return r.list(ctx, squirrel.Eq{"rule_id": ruleID})
}

func (r *ExecutionRepo) ListByTask(ctx context.Context, taskID core.ID) ([]*rule.Execution, error) {
	return r.list(ctx, squirrel.Eq{"task_id": taskID})
}

func (r *ExecutionRepo) list(ctx context.Context, where squirrel.Eq) ([]*rule.Execution, error) {
	q, args, err := squirrel.Select(executionColumns).
		From("workflow_executions").
		Where(where).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var rows []*rule.ExecutionDB
	if err := pgxscan.Select(ctx, r.db, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("scanning executions: %w", err)
	}
	execs := make([]*rule.Execution, 0, len(rows))
	for _, row := range rows {
		execs = append(execs, row.ToExecution())
	}
	return execs, nil
}
