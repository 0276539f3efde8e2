package rule

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/task"
)

// -----------------------------------------------------------------------------
// Trigger
// -----------------------------------------------------------------------------

// Trigger names the lifecycle event class a rule reacts to.
type Trigger string

const (
	TriggerTaskCreated        Trigger = "task_created"
	TriggerTaskUpdated        Trigger = "task_updated"
	TriggerStatusChanged      Trigger = "status_changed"
	TriggerAssigneeAdded      Trigger = "assignee_added"
	TriggerAssigneeRemoved    Trigger = "assignee_removed"
	TriggerTaskCompleted      Trigger = "task_completed"
	TriggerDueDateApproaching Trigger = "due_date_approaching"
	TriggerDueDatePassed      Trigger = "due_date_passed"
)

func (t Trigger) IsValid() bool {
	switch t {
	case TriggerTaskCreated, TriggerTaskUpdated, TriggerStatusChanged,
		TriggerAssigneeAdded, TriggerAssigneeRemoved, TriggerTaskCompleted,
		TriggerDueDateApproaching, TriggerDueDatePassed:
		return true
	}
	return false
}

func (t Trigger) String() string {
	return string(t)
}

// -----------------------------------------------------------------------------
// Condition
// -----------------------------------------------------------------------------

// Operator is a condition comparison operator.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpIsEmpty     Operator = "is_empty"
	OpIsNotEmpty  Operator = "is_not_empty"
)

func (o Operator) IsValid() bool {
	switch o {
	case OpEquals, OpNotEquals, OpContains, OpNotContains,
		OpGreaterThan, OpLessThan, OpIsEmpty, OpIsNotEmpty:
		return true
	}
	return false
}

// Condition compares one task attribute against a literal. All conditions of
// a rule are ANDed together.
type Condition struct {
	Field    task.Field `json:"field"`
	Operator Operator   `json:"operator"`
	Value    any        `json:"value,omitempty"`
}

// UnmarshalJSON validates the field reference at decode time so a rule naming
// a nonexistent attribute is rejected on write, not silently false at
// evaluation.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw struct {
		Field    string   `json:"field"`
		Operator Operator `json:"operator"`
		Value    any      `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	field, err := task.ParseField(raw.Field)
	if err != nil {
		return err
	}
	c.Field = field
	c.Operator = raw.Operator
	c.Value = raw.Value
	return nil
}

// -----------------------------------------------------------------------------
// Rule
// -----------------------------------------------------------------------------

type Rule struct {
	ID         core.ID     `json:"id"          db:"id"`
	ProjectID  core.ID     `json:"project_id"  db:"project_id"`
	Name       string      `json:"name"        db:"name"`
	Enabled    bool        `json:"enabled"     db:"enabled"`
	Trigger    Trigger     `json:"trigger"     db:"trigger"`
	Conditions []Condition `json:"conditions"  db:"conditions"`
	Actions    []Action    `json:"actions"     db:"actions"`
	CreatedBy  string      `json:"created_by"  db:"created_by"`
	CreatedAt  time.Time   `json:"created_at"  db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"  db:"updated_at"`
}

// Validate checks the parts of a rule the admin surface must reject early.
// Unknown operators and action types are deliberately not fatal here: the
// engine fails closed on them at evaluation time, and rejecting them would
// break rules written against a newer schema during a rolling deploy.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if r.ProjectID.IsZero() {
		return fmt.Errorf("rule project ID is required")
	}
	if !r.Trigger.IsValid() {
		return fmt.Errorf("unknown trigger: %q", r.Trigger)
	}
	if len(r.Actions) == 0 {
		return fmt.Errorf("rule requires at least one action")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Execution audit record
// -----------------------------------------------------------------------------

// Execution is the append-only audit record written once per rule invocation
// that reached (or failed during) the action stage.
type Execution struct {
	ID              core.ID   `json:"id"               db:"id"`
	RuleID          core.ID   `json:"rule_id"          db:"rule_id"`
	TaskID          core.ID   `json:"task_id"          db:"task_id"`
	Success         bool      `json:"success"          db:"success"`
	ActionsExecuted int       `json:"actions_executed" db:"actions_executed"`
	Error           string    `json:"error,omitempty"  db:"error"`
	CreatedAt       time.Time `json:"created_at"       db:"created_at"`
}

// -----------------------------------------------------------------------------
// RuleDB for database operations
// -----------------------------------------------------------------------------

type RuleDB struct {
	ID            core.ID   `db:"id"`
	ProjectID     core.ID   `db:"project_id"`
	Name          string    `db:"name"`
	Enabled       bool      `db:"enabled"`
	Trigger       Trigger   `db:"trigger"`
	ConditionsRaw []byte    `db:"conditions"`
	ActionsRaw    []byte    `db:"actions"`
	CreatedBy     string    `db:"created_by"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (rdb *RuleDB) ToRule() (*Rule, error) {
	r := &Rule{
		ID:        rdb.ID,
		ProjectID: rdb.ProjectID,
		Name:      rdb.Name,
		Enabled:   rdb.Enabled,
		Trigger:   rdb.Trigger,
		CreatedBy: rdb.CreatedBy,
		CreatedAt: rdb.CreatedAt,
		UpdatedAt: rdb.UpdatedAt,
	}
	if len(rdb.ConditionsRaw) > 0 {
		if err := json.Unmarshal(rdb.ConditionsRaw, &r.Conditions); err != nil {
			return nil, fmt.Errorf("unmarshaling conditions: %w", err)
		}
	}
	if len(rdb.ActionsRaw) > 0 {
		if err := json.Unmarshal(rdb.ActionsRaw, &r.Actions); err != nil {
			return nil, fmt.Errorf("unmarshaling actions: %w", err)
		}
	}
	return r, nil
}

type ExecutionDB struct {
	ID              core.ID        `db:"id"`
	RuleID          core.ID        `db:"rule_id"`
	TaskID          core.ID        `db:"task_id"`
	Success         bool           `db:"success"`
	ActionsExecuted int            `db:"actions_executed"`
	Error           sql.NullString `db:"error"`
	CreatedAt       time.Time      `db:"created_at"`
}

func (edb *ExecutionDB) ToExecution() *Execution {
	e := &Execution{
		ID:              edb.ID,
		RuleID:          edb.RuleID,
		TaskID:          edb.TaskID,
		Success:         edb.Success,
		ActionsExecuted: edb.ActionsExecuted,
		CreatedAt:       edb.CreatedAt,
	}
	if edb.Error.Valid {
		e.Error = edb.Error.String
	}
	return e
}
