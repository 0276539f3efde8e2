package task

import (
	"context"
	"time"

	"github.com/flowboard/flowboard/engine/core"
)

// Repository is the persistence boundary for tasks.
type Repository interface {
	Get(ctx context.Context, id core.ID) (*Task, error)
	Create(ctx context.Context, in *CreateInput) (*Task, error)
	Update(ctx context.Context, id core.ID, in *UpdateInput) (*Task, error)
	ListByProject(ctx context.Context, projectID core.ID) ([]*Task, error)

	// ListDueBetween returns tasks whose due date falls in (from, to].
	ListDueBetween(ctx context.Context, from, to time.Time) ([]*Task, error)
	// ListOverdue returns tasks past due at asOf that are not done yet.
	ListOverdue(ctx context.Context, asOf time.Time) ([]*Task, error)
}
