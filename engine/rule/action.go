package rule

import (
	"encoding/json"
	"fmt"

	"github.com/flowboard/flowboard/engine/task"
)

// -----------------------------------------------------------------------------
// Action Types
// -----------------------------------------------------------------------------

type ActionType string

const (
	ActionSendEmail        ActionType = "send_email"
	ActionSendNotification ActionType = "send_notification"
	ActionCreateTask       ActionType = "create_task"
	ActionUpdateTask       ActionType = "update_task"
	ActionAssignUser       ActionType = "assign_user"
	ActionSetDueDate       ActionType = "set_due_date"
	ActionChangeStatus     ActionType = "change_status"
	ActionAddComment       ActionType = "add_comment"
)

// -----------------------------------------------------------------------------
// Per-type parameter records
// -----------------------------------------------------------------------------

type SendEmailParams struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type SendNotificationParams struct {
	// Message is the channel message; when empty the task title is sent.
	Message string `json:"message,omitempty"`
}

type CreateTaskParams struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Status      task.Status `json:"status,omitempty"`
	Assignees   []string    `json:"assignees,omitempty"`
}

// UpdateTaskParams is a patch: absent fields leave the task untouched.
type UpdateTaskParams struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Status      *task.Status `json:"status,omitempty"`
	Assignees   *[]string    `json:"assignees,omitempty"`
}

type AssignUserParams struct {
	Email string `json:"email"`
}

type SetDueDateParams struct {
	// DueDate accepts RFC 3339 or date-only (2006-01-02) forms.
	DueDate string `json:"due_date"`
}

type ChangeStatusParams struct {
	Status task.Status `json:"status"`
}

type AddCommentParams struct {
	Body   string `json:"body"`
	Author string `json:"author,omitempty"`
}

// -----------------------------------------------------------------------------
// Action union
// -----------------------------------------------------------------------------

// Action is a tagged union: exactly one params pointer matching Type is set.
// Unrecognized types round-trip through Raw so the engine can skip them with
// a warning instead of dropping them from the rule.
type Action struct {
	Type ActionType

	SendEmail        *SendEmailParams
	SendNotification *SendNotificationParams
	CreateTask       *CreateTaskParams
	UpdateTask       *UpdateTaskParams
	AssignUser       *AssignUserParams
	SetDueDate       *SetDueDateParams
	ChangeStatus     *ChangeStatusParams
	AddComment       *AddCommentParams

	Raw json.RawMessage
}

type actionEnvelope struct {
	Type   ActionType      `json:"type"`
	Params json.RawMessage `json:"params,omitempty"`
}

func (a *Action) UnmarshalJSON(data []byte) error {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if env.Type == "" {
		return fmt.Errorf("action is missing a type")
	}
	a.Type = env.Type
	params := env.Params
	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}
	switch env.Type {
	case ActionSendEmail:
		a.SendEmail = &SendEmailParams{}
		return unmarshalParams(env.Type, params, a.SendEmail)
	case ActionSendNotification:
		a.SendNotification = &SendNotificationParams{}
		return unmarshalParams(env.Type, params, a.SendNotification)
	case ActionCreateTask:
		a.CreateTask = &CreateTaskParams{}
		return unmarshalParams(env.Type, params, a.CreateTask)
	case ActionUpdateTask:
		a.UpdateTask = &UpdateTaskParams{}
		return unmarshalParams(env.Type, params, a.UpdateTask)
	case ActionAssignUser:
		a.AssignUser = &AssignUserParams{}
		return unmarshalParams(env.Type, params, a.AssignUser)
	case ActionSetDueDate:
		a.SetDueDate = &SetDueDateParams{}
		return unmarshalParams(env.Type, params, a.SetDueDate)
	case ActionChangeStatus:
		a.ChangeStatus = &ChangeStatusParams{}
		return unmarshalParams(env.Type, params, a.ChangeStatus)
	case ActionAddComment:
		a.AddComment = &AddCommentParams{}
		return unmarshalParams(env.Type, params, a.AddComment)
	default:
		a.Raw = append(json.RawMessage(nil), params...)
		return nil
	}
}

func unmarshalParams(t ActionType, data json.RawMessage, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding %s params: %w", t, err)
	}
	return nil
}

func (a Action) MarshalJSON() ([]byte, error) {
	env := actionEnvelope{Type: a.Type}
	var params any
	switch a.Type {
	case ActionSendEmail:
		params = a.SendEmail
	case ActionSendNotification:
		params = a.SendNotification
	case ActionCreateTask:
		params = a.CreateTask
	case ActionUpdateTask:
		params = a.UpdateTask
	case ActionAssignUser:
		params = a.AssignUser
	case ActionSetDueDate:
		params = a.SetDueDate
	case ActionChangeStatus:
		params = a.ChangeStatus
	case ActionAddComment:
		params = a.AddComment
	default:
		if len(a.Raw) > 0 {
			env.Params = a.Raw
		}
		return json.Marshal(env)
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encoding %s params: %w", a.Type, err)
		}
		env.Params = raw
	}
	return json.Marshal(env)
}
