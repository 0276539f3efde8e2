package uc

import (
	"context"
	"errors"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/infra/store"
	"github.com/flowboard/flowboard/engine/task"
)

type Get struct {
	repo task.Repository
}

func NewGet(repo task.Repository) *Get {
	return &Get{repo: repo}
}

func (uc *Get) Execute(ctx context.Context, id core.ID) (*task.Task, error) {
	t, err := uc.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, notFound(err)
		}
		return nil, err
	}
	return t, nil
}

type List struct {
	repo task.Repository
}

func NewList(repo task.Repository) *List {
	return &List{repo: repo}
}

func (uc *List) Execute(ctx context.Context, projectID core.ID) ([]*task.Task, error) {
	return uc.repo.ListByProject(ctx, projectID)
}
