package task

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowboard/flowboard/engine/core"
)

// -----------------------------------------------------------------------------
// Status
// -----------------------------------------------------------------------------

// Status is the Kanban stage a task sits in. StatusTodo is the initial stage
// and StatusDone the terminal one.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// -----------------------------------------------------------------------------
// Task
// -----------------------------------------------------------------------------

type Task struct {
	ID          core.ID    `json:"id"           db:"id"`
	ProjectID   core.ID    `json:"project_id"   db:"project_id"`
	Title       string     `json:"title"        db:"title"`
	Description string     `json:"description"  db:"description"`
	Status      Status     `json:"status"       db:"status"`
	Priority    string     `json:"priority"     db:"priority"`
	Assignees   []string   `json:"assignees"    db:"assignees"`
	DueDate     *time.Time `json:"due_date,omitempty"     db:"due_date"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"   db:"updated_at"`
}

// HasAssignee reports whether email already appears in the assignee list.
func (t *Task) HasAssignee(email string) bool {
	for _, a := range t.Assignees {
		if a == email {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the task. Rule evaluation works on snapshots,
// so mutations applied for one rule must not leak into another rule's view.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	clone := *t
	if t.Assignees != nil {
		clone.Assignees = append([]string(nil), t.Assignees...)
	}
	if t.DueDate != nil {
		due := *t.DueDate
		clone.DueDate = &due
	}
	if t.CompletedAt != nil {
		completed := *t.CompletedAt
		clone.CompletedAt = &completed
	}
	return &clone
}

// -----------------------------------------------------------------------------
// Inputs
// -----------------------------------------------------------------------------

// CreateInput carries the fields accepted when inserting a task.
type CreateInput struct {
	ProjectID   core.ID    `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    string     `json:"priority"`
	Assignees   []string   `json:"assignees"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateInput is a patch: nil fields are left untouched by the store.
type UpdateInput struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Assignees   *[]string  `json:"assignees,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ClearCompletedAt forces completed_at back to NULL; a nil CompletedAt
	// alone means "leave untouched".
	ClearCompletedAt bool `json:"-"`
}

// IsEmpty reports whether the patch carries no changes.
func (in *UpdateInput) IsEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil &&
		in.Priority == nil && in.Assignees == nil && in.DueDate == nil &&
		in.CompletedAt == nil && !in.ClearCompletedAt
}

// Apply copies the patch onto t in place.
func (in *UpdateInput) Apply(t *Task) {
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.Assignees != nil {
		t.Assignees = append([]string(nil), (*in.Assignees)...)
	}
	if in.DueDate != nil {
		due := *in.DueDate
		t.DueDate = &due
	}
	if in.CompletedAt != nil {
		completed := *in.CompletedAt
		t.CompletedAt = &completed
	}
	if in.ClearCompletedAt {
		t.CompletedAt = nil
	}
}

// -----------------------------------------------------------------------------
// TaskDB for database operations
// -----------------------------------------------------------------------------

type TaskDB struct {
	ID           core.ID      `db:"id"`
	ProjectID    core.ID      `db:"project_id"`
	Title        string       `db:"title"`
	Description  string       `db:"description"`
	Status       Status       `db:"status"`
	Priority     string       `db:"priority"`
	AssigneesRaw []byte       `db:"assignees"`
	DueDate      sql.NullTime `db:"due_date"`
	CompletedAt  sql.NullTime `db:"completed_at"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

// ToTask converts TaskDB to Task with proper JSON unmarshaling.
func (tdb *TaskDB) ToTask() (*Task, error) {
	t := &Task{
		ID:          tdb.ID,
		ProjectID:   tdb.ProjectID,
		Title:       tdb.Title,
		Description: tdb.Description,
		Status:      tdb.Status,
		Priority:    tdb.Priority,
		CreatedAt:   tdb.CreatedAt,
		UpdatedAt:   tdb.UpdatedAt,
	}
	if len(tdb.AssigneesRaw) > 0 {
		if err := json.Unmarshal(tdb.AssigneesRaw, &t.Assignees); err != nil {
			return nil, fmt.Errorf("unmarshaling assignees: %w", err)
		}
	}
	if tdb.DueDate.Valid {
		due := tdb.DueDate.Time
		t.DueDate = &due
	}
	if tdb.CompletedAt.Valid {
		completed := tdb.CompletedAt.Time
		t.CompletedAt = &completed
	}
	return t, nil
}
