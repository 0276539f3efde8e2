package notify

import (
	"context"
	"time"

	"github.com/flowboard/flowboard/engine/core"
)

// ChannelConfig is a project's outbound notification channel. One channel per
// project; absence means notifications for that project are dropped.
type ChannelConfig struct {
	ProjectID  core.ID   `json:"project_id"  db:"project_id"`
	WebhookURL string    `json:"webhook_url" db:"webhook_url"`
	Channel    string    `json:"channel"     db:"channel"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"  db:"updated_at"`
}

// ChannelRepository persists per-project channel configurations.
type ChannelRepository interface {
	// GetByProject returns nil (no error) when the project has no channel.
	GetByProject(ctx context.Context, projectID core.ID) (*ChannelConfig, error)
	Upsert(ctx context.Context, cfg *ChannelConfig) error
}
