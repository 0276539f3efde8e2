package task

import "fmt"

// Field names a task attribute a workflow condition can reference. Parsing
// happens when a rule is constructed, so a bad field name fails loudly there
// instead of silently evaluating to false at runtime.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldAssignees   Field = "assignees"
	FieldDueDate     Field = "due_date"
)

func ParseField(s string) (Field, error) {
	f := Field(s)
	switch f {
	case FieldTitle, FieldDescription, FieldStatus, FieldPriority, FieldAssignees, FieldDueDate:
		return f, nil
	}
	return "", fmt.Errorf("unknown task field: %q", s)
}

func (f Field) String() string {
	return string(f)
}

// FieldValue returns the value of the named attribute. Due dates come back as
// *time.Time (nil when unset) so emptiness checks see them as absent.
func (t *Task) FieldValue(f Field) any {
	switch f {
	case FieldTitle:
		return t.Title
	case FieldDescription:
		return t.Description
	case FieldStatus:
		return string(t.Status)
	case FieldPriority:
		return t.Priority
	case FieldAssignees:
		return t.Assignees
	case FieldDueDate:
		if t.DueDate == nil {
			return nil
		}
		return *t.DueDate
	default:
		return nil
	}
}
