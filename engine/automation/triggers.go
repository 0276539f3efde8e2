package automation

import (
	"time"

	"github.com/flowboard/flowboard/engine/rule"
	"github.com/flowboard/flowboard/engine/task"
)

// dueSoonWindow is how far ahead due_date_approaching looks.
const dueSoonWindow = 24 * time.Hour

// TriggerMatches decides whether a lifecycle event satisfies a rule's
// trigger. It is pure and total: unrecognized triggers resolve to false.
//
// assignee_added and assignee_removed compare assignee counts, not set
// membership, so swapping one assignee for another fires neither trigger.
// This matches the shipped product behavior and stays until product says
// otherwise.
func TriggerMatches(trig rule.Trigger, evType EventType, t, old *task.Task, now time.Time) bool {
	switch trig {
	case rule.TriggerTaskCreated:
		return evType == EventCreated
	case rule.TriggerTaskUpdated:
		return evType == EventUpdated
	case rule.TriggerStatusChanged:
		return evType == EventUpdated && old != nil && t.Status != old.Status
	case rule.TriggerAssigneeAdded:
		return evType == EventUpdated && old != nil && len(t.Assignees) > len(old.Assignees)
	case rule.TriggerAssigneeRemoved:
		return evType == EventUpdated && old != nil && len(t.Assignees) < len(old.Assignees)
	case rule.TriggerTaskCompleted:
		return evType == EventUpdated && t.Status == task.StatusDone
	case rule.TriggerDueDateApproaching:
		// Independent of eventType: fed by the periodic due-date scan.
		if t.DueDate == nil {
			return false
		}
		until := t.DueDate.Sub(now)
		return until > 0 && until <= dueSoonWindow
	case rule.TriggerDueDatePassed:
		return t.DueDate != nil && now.After(*t.DueDate)
	default:
		return false
	}
}
