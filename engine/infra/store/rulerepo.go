package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/rule"
)

// ErrRuleNotFound is returned when a workflow rule row does not exist.
var ErrRuleNotFound = errors.New("workflow rule not found")

// RuleRepo implements rule.Repository against Postgres.
type RuleRepo struct {
	db DBInterface
}

func NewRuleRepo(db DBInterface) *RuleRepo {
	return &RuleRepo{db: db}
}

const ruleColumns = "id, project_id, name, enabled, trigger, conditions, actions, created_by, created_at, updated_at"

func (r *RuleRepo) Get(ctx context.Context, id core.ID) (*rule.Rule, error) {
	sql, args, err := squirrel.Select(ruleColumns).
		From("workflow_rules").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var row rule.RuleDB
	if err := pgxscan.Get(ctx, r.db, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, fmt.Errorf("scanning rule: %w", err)
	}
	return row.ToRule()
}

func (r *RuleRepo) Create(ctx context.Context, ru *rule.Rule) error {
	if err := ru.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if ru.ID.IsZero() {
		ru.ID = core.MustNewID()
	}
	ru.CreatedAt = now
	ru.UpdatedAt = now
	if ru.Conditions == nil {
		ru.Conditions = []rule.Condition{}
	}
	conditionsJSON, err := ToJSONB(ru.Conditions)
	if err != nil {
		return err
	}
	actionsJSON, err := ToJSONB(ru.Actions)
	if err != nil {
		return err
	}
	sql, args, err := squirrel.Insert("workflow_rules").
		Columns("id", "project_id", "name", "enabled", "trigger",
			"conditions", "actions", "created_by", "created_at", "updated_at").
		Values(ru.ID, ru.ProjectID, ru.Name, ru.Enabled, ru.Trigger,
			conditionsJSON, actionsJSON, ru.CreatedBy, ru.CreatedAt, ru.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("inserting rule: %w", err)
	}
	return nil
}

func (r *RuleRepo) Update(ctx context.Context, ru *rule.Rule) error {
	if err := ru.Validate(); err != nil {
		return err
	}
	ru.UpdatedAt = time.Now().UTC()
	if ru.Conditions == nil {
		ru.Conditions = []rule.Condition{}
	}
	conditionsJSON, err := ToJSONB(ru.Conditions)
	if err != nil {
		return err
	}
	actionsJSON, err := ToJSONB(ru.Actions)
	if err != nil {
		return err
	}
	sql, args, err := squirrel.Update("workflow_rules").
		Set("name", ru.Name).
		Set("enabled", ru.Enabled).
		Set("trigger", ru.Trigger).
		Set("conditions", conditionsJSON).
		Set("actions", actionsJSON).
		Set("updated_at", ru.UpdatedAt).
		Where(squirrel.Eq{"id": ru.ID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("updating rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *RuleRepo) Delete(ctx context.Context, id core.ID) error {
	sql, args, err := squirrel.Delete("workflow_rules").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRuleNotFound
	}
	return nil
}

func (r *RuleRepo) ListByProject(ctx context.Context, projectID core.ID) ([]*rule.Rule, error) {
	return r.list(ctx, squirrel.Eq{"project_id": projectID})
}

func (r *RuleRepo) ListEnabledByProject(ctx context.Context, projectID core.ID) ([]*rule.Rule, error) {
	return r.list(ctx, squirrel.Eq{"project_id": projectID, "enabled": true})
}

func (r *RuleRepo) list(ctx context.Context, where squirrel.Eq) ([]*rule.Rule, error) {
	sql, args, err := squirrel.Select(ruleColumns).
		From("workflow_rules").
		Where(where).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var rows []*rule.RuleDB
	if err := pgxscan.Select(ctx, r.db, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("scanning rules: %w", err)
	}
	rules := make([]*rule.Rule, 0, len(rows))
	for _, row := range rows {
		ru, err := row.ToRule()
		if err != nil {
			return nil, fmt.Errorf("converting rule: %w", err)
		}
		rules = append(rules, ru)
	}
	return rules, nil
}
