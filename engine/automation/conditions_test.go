package automation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/flowboard/flowboard/engine/rule"
	"github.com/flowboard/flowboard/engine/task"
)

func evalOne(t *task.Task, field task.Field, op rule.Operator, value any) bool {
	return EvaluateCondition(t, &rule.Condition{Field: field, Operator: op, Value: value})
}

func TestEvaluateCondition_Equals(t *testing.T) {
	tk := &task.Task{Priority: "high", Status: task.StatusReview}

	t.Run("Should match identical strings", func(t *testing.T) {
		assert.True(t, evalOne(tk, task.FieldPriority, rule.OpEquals, "high"))
		assert.False(t, evalOne(tk, task.FieldPriority, rule.OpEquals, "low"))
	})
	t.Run("Should match status against its string form", func(t *testing.T) {
		assert.True(t, evalOne(tk, task.FieldStatus, rule.OpEquals, "review"))
	})
	t.Run("Should be exactly negated by not_equals", func(t *testing.T) {
		for _, value := range []any{"high", "low", "", 3.0, nil} {
			eq := evalOne(tk, task.FieldPriority, rule.OpEquals, value)
			ne := evalOne(tk, task.FieldPriority, rule.OpNotEquals, value)
			assert.NotEqual(t, eq, ne, "value %v", value)
		}
	})
	t.Run("Should not equate string to number", func(t *testing.T) {
		assert.False(t, evalOne(tk, task.FieldPriority, rule.OpEquals, 5.0))
	})
}

func TestEvaluateCondition_Contains(t *testing.T) {
	tk := &task.Task{
		Title:     "Fix Login Bug",
		Assignees: []string{"ana@example.com", "bob@example.com"},
	}

	t.Run("Should match case-insensitive substring on text", func(t *testing.T) {
		assert.True(t, evalOne(tk, task.FieldTitle, rule.OpContains, "login"))
		assert.True(t, evalOne(tk, task.FieldTitle, rule.OpContains, "BUG"))
		assert.False(t, evalOne(tk, task.FieldTitle, rule.OpContains, "logout"))
	})
	t.Run("Should match exact membership on lists", func(t *testing.T) {
		assert.True(t, evalOne(tk, task.FieldAssignees, rule.OpContains, "ana@example.com"))
		assert.False(t, evalOne(tk, task.FieldAssignees, rule.OpContains, "ana"))
	})
	t.Run("Should be false on incompatible types", func(t *testing.T) {
		assert.False(t, evalOne(tk, task.FieldTitle, rule.OpContains, 42.0))
		assert.False(t, evalOne(tk, task.FieldDueDate, rule.OpContains, "2026"))
	})
	t.Run("Should fail open for not_contains on incompatible types", func(t *testing.T) {
		assert.True(t, evalOne(tk, task.FieldTitle, rule.OpNotContains, 42.0))
		assert.True(t, evalOne(tk, task.FieldDueDate, rule.OpNotContains, "2026"))
	})
	t.Run("Should negate contains for compatible types", func(t *testing.T) {
		assert.False(t, evalOne(tk, task.FieldTitle, rule.OpNotContains, "login"))
		assert.True(t, evalOne(tk, task.FieldAssignees, rule.OpNotContains, "eve@example.com"))
	})
}

func TestEvaluateCondition_Ordering(t *testing.T) {
	due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	tk := &task.Task{DueDate: &due, Priority: "high", Title: "3"}

	t.Run("Should compare due date chronologically against RFC 3339", func(t *testing.T) {
		assert.True(t, evalOne(tk, task.FieldDueDate, rule.OpGreaterThan, "2026-09-01T00:00:00Z"))
		assert.True(t, evalOne(tk, task.FieldDueDate, rule.OpLessThan, "2026-10-01T00:00:00Z"))
		assert.False(t, evalOne(tk, task.FieldDueDate, rule.OpGreaterThan, "2026-10-01T00:00:00Z"))
	})
	t.Run("Should compare due date against date-only strings", func(t *testing.T) {
		assert.True(t, evalOne(tk, task.FieldDueDate, rule.OpGreaterThan, "2026-09-01"))
	})
	t.Run("Should be false for non-orderable pairings", func(t *testing.T) {
		// Numeric-looking strings are not parsed as numbers.
		assert.False(t, evalOne(tk, task.FieldTitle, rule.OpGreaterThan, 2.0))
		assert.False(t, evalOne(tk, task.FieldPriority, rule.OpLessThan, "zzz-not-a-date"))
		assert.False(t, evalOne(tk, task.FieldPriority, rule.OpGreaterThan, nil))
	})
	t.Run("Should be false both ways for equal values", func(t *testing.T) {
		assert.False(t, evalOne(tk, task.FieldDueDate, rule.OpGreaterThan, "2026-09-15T12:00:00Z"))
		assert.False(t, evalOne(tk, task.FieldDueDate, rule.OpLessThan, "2026-09-15T12:00:00Z"))
	})
}

func TestEvaluateCondition_Emptiness(t *testing.T) {
	empty := &task.Task{Assignees: []string{}}
	full := &task.Task{Title: "x", Assignees: []string{"ana@example.com"}}
	due := time.Now()
	full.DueDate = &due

	t.Run("Should treat empty string, empty list and nil as empty", func(t *testing.T) {
		assert.True(t, evalOne(empty, task.FieldTitle, rule.OpIsEmpty, nil))
		assert.True(t, evalOne(empty, task.FieldAssignees, rule.OpIsEmpty, nil))
		assert.True(t, evalOne(empty, task.FieldDueDate, rule.OpIsEmpty, nil))
	})
	t.Run("Should treat populated values as non-empty", func(t *testing.T) {
		assert.True(t, evalOne(full, task.FieldTitle, rule.OpIsNotEmpty, nil))
		assert.True(t, evalOne(full, task.FieldAssignees, rule.OpIsNotEmpty, nil))
		assert.True(t, evalOne(full, task.FieldDueDate, rule.OpIsNotEmpty, nil))
	})
	t.Run("Should keep is_empty and is_not_empty exact negations", func(t *testing.T) {
		for _, tk := range []*task.Task{empty, full} {
			for _, f := range []task.Field{task.FieldTitle, task.FieldAssignees, task.FieldDueDate, task.FieldPriority} {
				isEmpty := evalOne(tk, f, rule.OpIsEmpty, nil)
				isNotEmpty := evalOne(tk, f, rule.OpIsNotEmpty, nil)
				assert.NotEqual(t, isEmpty, isNotEmpty, "field %s", f)
			}
		}
	})
}

func TestEvaluateCondition_UnrecognizedOperator(t *testing.T) {
	t.Run("Should fail closed", func(t *testing.T) {
		tk := &task.Task{Priority: "high"}
		assert.False(t, evalOne(tk, task.FieldPriority, rule.Operator("matches_regex"), ".*"))
	})
}

func TestEvaluateConditions(t *testing.T) {
	tk := &task.Task{Priority: "high", Status: task.StatusTodo}

	t.Run("Should be vacuously true for an empty list", func(t *testing.T) {
		assert.True(t, EvaluateConditions(tk, nil))
		assert.True(t, EvaluateConditions(tk, []rule.Condition{}))
	})
	t.Run("Should AND all conditions", func(t *testing.T) {
		conds := []rule.Condition{
			{Field: task.FieldPriority, Operator: rule.OpEquals, Value: "high"},
			{Field: task.FieldStatus, Operator: rule.OpEquals, Value: "todo"},
		}
		assert.True(t, EvaluateConditions(tk, conds))
		conds[1].Value = "done"
		assert.False(t, EvaluateConditions(tk, conds))
	})
}
