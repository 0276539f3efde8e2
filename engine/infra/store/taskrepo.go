package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/task"
)

// ErrTaskNotFound is returned when a task row does not exist.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepo implements task.Repository against Postgres.
type TaskRepo struct {
	db DBInterface
}

func NewTaskRepo(db DBInterface) *TaskRepo {
	return &TaskRepo{db: db}
}

const taskColumns = "id, project_id, title, description, status, priority, assignees, due_date, completed_at, created_at, updated_at"

func (r *TaskRepo) Get(ctx context.Context, id core.ID) (*task.Task, error) {
	sql, args, err := squirrel.Select(taskColumns).
		From("tasks").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var row task.TaskDB
	if err := pgxscan.Get(ctx, r.db, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	return row.ToTask()
}

func (r *TaskRepo) Create(ctx context.Context, in *task.CreateInput) (*task.Task, error) {
	now := time.Now().UTC()
	status := in.Status
	if status == "" {
		status = task.StatusTodo
	}
	priority := in.Priority
	if priority == "" {
		priority = "medium"
	}
	assignees := in.Assignees
	if assignees == nil {
		assignees = []string{}
	}
	assigneesJSON, err := ToJSONB(assignees)
	if err != nil {
		return nil, err
	}
	t := &task.Task{
		ID:          core.MustNewID(),
		ProjectID:   in.ProjectID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		Assignees:   assignees,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	sql, args, err := squirrel.Insert("tasks").
		Columns("id", "project_id", "title", "description", "status", "priority",
			"assignees", "due_date", "created_at", "updated_at").
		Values(t.ID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority,
			assigneesJSON, t.DueDate, t.CreatedAt, t.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}
	return t, nil
}

func (r *TaskRepo) Update(ctx context.Context, id core.ID, in *task.UpdateInput) (*task.Task, error) {
	ub := squirrel.Update("tasks").
		Where(squirrel.Eq{"id": id}).
		Set("updated_at", time.Now().UTC()).
		PlaceholderFormat(squirrel.Dollar)
	if in.Title != nil {
		ub = ub.Set("title", *in.Title)
	}
	if in.Description != nil {
		ub = ub.Set("description", *in.Description)
	}
	if in.Status != nil {
		ub = ub.Set("status", *in.Status)
	}
	if in.Priority != nil {
		ub = ub.Set("priority", *in.Priority)
	}
	if in.Assignees != nil {
		assigneesJSON, err := ToJSONB(*in.Assignees)
		if err != nil {
			return nil, err
		}
		ub = ub.Set("assignees", assigneesJSON)
	}
	if in.DueDate != nil {
		ub = ub.Set("due_date", *in.DueDate)
	}
	if in.CompletedAt != nil {
		ub = ub.Set("completed_at", *in.CompletedAt)
	} else if in.ClearCompletedAt {
		ub = ub.Set("completed_at", nil)
	}
	sql, args, err := ub.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrTaskNotFound
	}
	return r.Get(ctx, id)
}

func (r *TaskRepo) ListByProject(ctx context.Context, projectID core.ID) ([]*task.Task, error) {
	sql, args, err := squirrel.Select(taskColumns).
		From("tasks").
		Where(squirrel.Eq{"project_id": projectID}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return r.queryTasks(ctx, sql, args)
}

func (r *TaskRepo) ListDueBetween(ctx context.Context, from, to time.Time) ([]*task.Task, error) {
	sql, args, err := squirrel.Select(taskColumns).
		From("tasks").
		Where(squirrel.Gt{"due_date": from}).
		Where(squirrel.LtOrEq{"due_date": to}).
		Where(squirrel.NotEq{"status": task.StatusDone}).
		OrderBy("due_date ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return r.queryTasks(ctx, sql, args)
}

func (r *TaskRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]*task.Task, error) {
	sql, args, err := squirrel.Select(taskColumns).
		From("tasks").
		Where(squirrel.Lt{"due_date": asOf}).
		Where(squirrel.NotEq{"status": task.StatusDone}).
		OrderBy("due_date ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return r.queryTasks(ctx, sql, args)
}

func (r *TaskRepo) queryTasks(ctx context.Context, sql string, args []any) ([]*task.Task, error) {
	var rows []*task.TaskDB
	if err := pgxscan.Select(ctx, r.db, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("scanning tasks: %w", err)
	}
	tasks := make([]*task.Task, 0, len(rows))
	for _, row := range rows {
		t, err := row.ToTask()
		if err != nil {
			return nil, fmt.Errorf("converting task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
