package uc

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/infra/store"
	"github.com/flowboard/flowboard/engine/rule"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("workflow rule not found")
)

// invalidInput builds the structured error surfaced to the HTTP layer while
// keeping ErrInvalidInput matchable through the chain.
func invalidInput(cause error) error {
	return core.NewError(errors.Join(ErrInvalidInput, cause), "INVALID_INPUT", nil)
}

func notFound(cause error) error {
	return core.NewError(errors.Join(ErrNotFound, cause), "RULE_NOT_FOUND", nil)
}

type CreateRule struct {
	repo rule.Repository
}

func NewCreateRule(repo rule.Repository) *CreateRule {
	return &CreateRule{repo: repo}
}

func (uc *CreateRule) Execute(ctx context.Context, ru *rule.Rule) (*rule.Rule, error) {
	if ru == nil {
		return nil, invalidInput(fmt.Errorf("rule cannot be nil"))
	}
	if err := ru.Validate(); err != nil {
		return nil, invalidInput(err)
	}
	if err := uc.repo.Create(ctx, ru); err != nil {
		return nil, err
	}
	return ru, nil
}

type GetRule struct {
	repo rule.Repository
}

func NewGetRule(repo rule.Repository) *GetRule {
	return &GetRule{repo: repo}
}

func (uc *GetRule) Execute(ctx context.Context, id core.ID) (*rule.Rule, error) {
	ru, err := uc.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRuleNotFound) {
			return nil, notFound(err)
		}
		return nil, err
	}
	return ru, nil
}

type UpdateRule struct {
	repo rule.Repository
}

func NewUpdateRule(repo rule.Repository) *UpdateRule {
	return &UpdateRule{repo: repo}
}

// UpdateRuleInput is a patch over the editable rule fields.
type UpdateRuleInput struct {
	Name       *string           `json:"name,omitempty"`
	Enabled    *bool             `json:"enabled,omitempty"`
	Trigger    *rule.Trigger     `json:"trigger,omitempty"`
	Conditions *[]rule.Condition `json:"conditions,omitempty"`
	Actions    *[]rule.Action    `json:"actions,omitempty"`
}

func (uc *UpdateRule) Execute(ctx context.Context, id core.ID, in *UpdateRuleInput) (*rule.Rule, error) {
	if in == nil {
		return nil, invalidInput(fmt.Errorf("input cannot be nil"))
	}
	ru, err := uc.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRuleNotFound) {
			return nil, notFound(err)
		}
		return nil, err
	}
	if in.Name != nil {
		ru.Name = *in.Name
	}
	if in.Enabled != nil {
		ru.Enabled = *in.Enabled
	}
	if in.Trigger != nil {
		ru.Trigger = *in.Trigger
	}
	if in.Conditions != nil {
		ru.Conditions = *in.Conditions
	}
	if in.Actions != nil {
		ru.Actions = *in.Actions
	}
	if err := ru.Validate(); err != nil {
		return nil, invalidInput(err)
	}
	if err := uc.repo.Update(ctx, ru); err != nil {
		if errors.Is(err, store.ErrRuleNotFound) {
			return nil, notFound(err)
		}
		return nil, err
	}
	return ru, nil
}

type DeleteRule struct {
	repo rule.Repository
}

func NewDeleteRule(repo rule.Repository) *DeleteRule {
	return &DeleteRule{repo: repo}
}

func (uc *DeleteRule) Execute(ctx context.Context, id core.ID) error {
	err := uc.repo.Delete(ctx, id)
	if errors.Is(err, store.ErrRuleNotFound) {
		return notFound(err)
	}
	return err
}

type ListRules struct {
	repo rule.Repository
}

func NewListRules(repo rule.Repository) *ListRules {
	return &ListRules{repo: repo}
}

func (uc *ListRules) Execute(ctx context.Context, projectID core.ID) ([]*rule.Rule, error) {
	return uc.repo.ListByProject(ctx, projectID)
}

type ListExecutions struct {
	repo rule.ExecutionRepository
}

func NewListExecutions(repo rule.ExecutionRepository) *ListExecutions {
	return &ListExecutions{repo: repo}
}

func (uc *ListExecutions) ByRule(ctx context.Context, ruleID core.ID) ([]*rule.Execution, error) {
	return uc.repo.ListByRule(ctx, ruleID)
}

func (uc *ListExecutions) ByTask(ctx context.Context, taskID core.ID) ([]*rule.Execution, error) {
	return uc.repo.ListByTask(ctx, taskID)
}
