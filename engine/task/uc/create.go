package uc

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowboard/flowboard/engine/automation"
	"github.com/flowboard/flowboard/engine/task"
)

// EventProcessor receives lifecycle events after a mutation commits.
// Satisfied by automation.Engine.
type EventProcessor interface {
	ProcessTaskEvent(ctx context.Context, event *automation.Event)
}

type Create struct {
	repo   task.Repository
	engine EventProcessor
}

func NewCreate(repo task.Repository, engine EventProcessor) *Create {
	return &Create{repo: repo, engine: engine}
}

func (uc *Create) Execute(ctx context.Context, in *task.CreateInput) (*task.Task, error) {
	if in == nil {
		return nil, invalidInput(fmt.Errorf("input cannot be nil"), nil)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, invalidInput(fmt.Errorf("title is required"), map[string]any{"field": "title"})
	}
	if in.ProjectID.IsZero() {
		return nil, invalidInput(fmt.Errorf("project ID is required"), map[string]any{"field": "project_id"})
	}
	if in.Status != "" && !in.Status.IsValid() {
		return nil, invalidInput(fmt.Errorf("unknown status: %q", in.Status), map[string]any{"field": "status"})
	}
	created, err := uc.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	// Rules run after the row is committed; rule failures never fail the
	// request.
	uc.engine.ProcessTaskEvent(ctx, &automation.Event{
		Type: automation.EventCreated,
		Task: created,
	})
	return created, nil
}
