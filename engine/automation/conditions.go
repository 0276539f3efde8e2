package automation

import (
	"strings"
	"time"

	"github.com/flowboard/flowboard/engine/rule"
	"github.com/flowboard/flowboard/engine/task"
)

// EvaluateConditions reports whether every condition holds for the task.
// An empty condition list is vacuously true: a rule with no conditions always
// matches once its trigger matches.
func EvaluateConditions(t *task.Task, conds []rule.Condition) bool {
	for i := range conds {
		if !EvaluateCondition(t, &conds[i]) {
			return false
		}
	}
	return true
}

// EvaluateCondition decides whether a single condition holds. It is pure and
// total: unrecognized operators and incomparable values resolve to false
// (except not_contains, which fails open on type mismatch).
func EvaluateCondition(t *task.Task, c *rule.Condition) bool {
	field := t.FieldValue(c.Field)
	switch c.Operator {
	case rule.OpEquals:
		return valuesEqual(field, c.Value)
	case rule.OpNotEquals:
		return !valuesEqual(field, c.Value)
	case rule.OpContains:
		contains, _ := valueContains(field, c.Value)
		return contains
	case rule.OpNotContains:
		contains, comparable := valueContains(field, c.Value)
		if !comparable {
			return true
		}
		return !contains
	case rule.OpGreaterThan:
		return valueCompare(field, c.Value) > 0
	case rule.OpLessThan:
		return valueCompare(field, c.Value) < 0
	case rule.OpIsEmpty:
		return valueIsEmpty(field)
	case rule.OpIsNotEmpty:
		return !valueIsEmpty(field)
	default:
		return false
	}
}

func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok {
			return an == bn
		}
		return false
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return as == bs
		}
		return false
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := toTime(b); ok {
			return at.Equal(bt)
		}
		return false
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return ab == bb
		}
		return false
	}
	if alist, ok := toStringList(a); ok {
		if blist, ok := toStringList(b); ok {
			if len(alist) != len(blist) {
				return false
			}
			for i := range alist {
				if alist[i] != blist[i] {
					return false
				}
			}
			return true
		}
		return false
	}
	return false
}

// valueContains implements the dual semantics of the contains operator:
// case-insensitive substring on text fields, exact membership on list fields.
// The second return reports whether the pairing was comparable at all, which
// not_contains needs to fail open on.
func valueContains(field, value any) (contains, comparable bool) {
	needle, ok := value.(string)
	if !ok {
		return false, false
	}
	switch f := field.(type) {
	case string:
		return strings.Contains(strings.ToLower(f), strings.ToLower(needle)), true
	default:
		if list, ok := toStringList(field); ok {
			for _, item := range list {
				if item == needle {
					return true, true
				}
			}
			return false, true
		}
	}
	return false, false
}

// valueCompare returns -1, 0, or 1 when the pair is ordered, and 0 when it is
// not comparable, making both greater_than and less_than false in that case.
func valueCompare(a, b any) int {
	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok {
			switch {
			case an > bn:
				return 1
			case an < bn:
				return -1
			}
			return 0
		}
		return 0
	}
	at, aok := toTime(a)
	bt, bok := toTime(b)
	if aok && bok {
		switch {
		case at.After(bt):
			return 1
		case at.Before(bt):
			return -1
		}
	}
	return 0
}

func valueIsEmpty(v any) bool {
	switch vv := v.(type) {
	case nil:
		return true
	case string:
		return vv == ""
	case []string:
		return len(vv) == 0
	case []any:
		return len(vv) == 0
	}
	return false
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// toTime accepts time.Time values and strings in RFC 3339 or date-only form.
func toTime(v any) (time.Time, bool) {
	switch tv := v.(type) {
	case time.Time:
		return tv, true
	case string:
		if ts, err := time.Parse(time.RFC3339, tv); err == nil {
			return ts, true
		}
		if ts, err := time.Parse("2006-01-02", tv); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func toStringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
