package uc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowboard/flowboard/engine/automation"
	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/infra/store"
	"github.com/flowboard/flowboard/engine/task"
)

type Update struct {
	repo   task.Repository
	engine EventProcessor
}

func NewUpdate(repo task.Repository, engine EventProcessor) *Update {
	return &Update{repo: repo, engine: engine}
}

func (uc *Update) Execute(ctx context.Context, id core.ID, in *task.UpdateInput) (*task.Task, error) {
	if in == nil || in.IsEmpty() {
		return nil, invalidInput(fmt.Errorf("update carries no changes"), nil)
	}
	if in.Status != nil && !in.Status.IsValid() {
		return nil, invalidInput(fmt.Errorf("unknown status: %q", *in.Status), map[string]any{"field": "status"})
	}
	// Pre-image is captured before the write so delta triggers can compare.
	old, err := uc.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, notFound(err)
		}
		return nil, err
	}
	// Completion is stamped on the transition into done and cleared on the
	// way out, unless the caller set it explicitly.
	if in.Status != nil && *in.Status != old.Status && in.CompletedAt == nil {
		if *in.Status == task.StatusDone {
			now := time.Now().UTC()
			in.CompletedAt = &now
		} else if old.Status == task.StatusDone {
			in.ClearCompletedAt = true
		}
	}
	updated, err := uc.repo.Update(ctx, id, in)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, notFound(err)
		}
		return nil, err
	}
	uc.engine.ProcessTaskEvent(ctx, &automation.Event{
		Type:    automation.EventUpdated,
		Task:    updated,
		OldTask: old,
	})
	return updated, nil
}
