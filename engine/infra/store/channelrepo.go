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
	"github.com/flowboard/flowboard/engine/notify"
)

// ChannelRepo implements notify.ChannelRepository against Postgres.
type ChannelRepo struct {
	db DBInterface
}

func NewChannelRepo(db DBInterface) *ChannelRepo {
	return &ChannelRepo{db: db}
}

func (r *ChannelRepo) GetByProject(ctx context.Context, projectID core.ID) (*notify.ChannelConfig, error) {
	sql, args, err := squirrel.Select("project_id", "webhook_url", "channel", "created_at", "updated_at").
		From("notification_channels").
		Where(squirrel.Eq{"project_id": projectID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	var cfg notify.ChannelConfig
	if err := pgxscan.Get(ctx, r.db, &cfg, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning channel config: %w", err)
	}
	return &cfg, nil
}

func (r *ChannelRepo) Upsert(ctx context.Context, cfg *notify.ChannelConfig) error {
	now := time.Now().UTC()
	cfg.UpdatedAt = now
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	sql, args, err := squirrel.Insert("notification_channels").
		Columns("project_id", "webhook_url", "channel", "created_at", "updated_at").
		Values(cfg.ProjectID, cfg.WebhookURL, cfg.Channel, cfg.CreatedAt, cfg.UpdatedAt).
		Suffix("ON CONFLICT (project_id) DO UPDATE SET webhook_url = EXCLUDED.webhook_url, channel = EXCLUDED.channel, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building upsert: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upserting channel config: %w", err)
	}
	return nil
}
