package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/pkg/logger"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultMaxRetries     = 3
	retryBackoffBase      = 500 * time.Millisecond
)

// slackPayload is the incoming-webhook message body.
type slackPayload struct {
	Text    string `json:"text"`
	Channel string `json:"channel,omitempty"`
}

// SlackDispatcher delivers project notifications to Slack incoming webhooks.
// It satisfies the engine's Notifier interface.
type SlackDispatcher struct {
	channels   ChannelRepository
	client     *resty.Client
	maxRetries uint64
}

type SlackOption func(*SlackDispatcher)

func WithRequestTimeout(d time.Duration) SlackOption {
	return func(s *SlackDispatcher) { s.client.SetTimeout(d) }
}

func WithMaxRetries(n uint64) SlackOption {
	return func(s *SlackDispatcher) { s.maxRetries = n }
}

// WithBaseURL pins all webhook posts to a fixed host; tests point this at a
// local server.
func WithBaseURL(url string) SlackOption {
	return func(s *SlackDispatcher) { s.client.SetBaseURL(url) }
}

func NewSlackDispatcher(channels ChannelRepository, opts ...SlackOption) *SlackDispatcher {
	d := &SlackDispatcher{
		channels:   channels,
		client:     resty.New().SetTimeout(defaultRequestTimeout),
		maxRetries: defaultMaxRetries,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ChannelConfig returns the project's channel, or nil when none configured.
func (d *SlackDispatcher) ChannelConfig(ctx context.Context, projectID core.ID) (*ChannelConfig, error) {
	return d.channels.GetByProject(ctx, projectID)
}

// Send posts the message to the channel's webhook, retrying transient
// failures with exponential backoff.
func (d *SlackDispatcher) Send(ctx context.Context, cfg *ChannelConfig, message string) error {
	if cfg == nil || cfg.WebhookURL == "" {
		return fmt.Errorf("slack channel is not configured")
	}
	payload := slackPayload{Text: message, Channel: cfg.Channel}
	backoff := retry.WithMaxRetries(d.maxRetries, retry.NewExponential(retryBackoffBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		resp, err := d.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(payload).
			Post(cfg.WebhookURL)
		if err != nil {
			return retry.RetryableError(err)
		}
		if resp.StatusCode() >= 500 {
			return retry.RetryableError(fmt.Errorf("slack webhook returned %d", resp.StatusCode()))
		}
		if resp.IsError() {
			return fmt.Errorf("slack webhook returned %d", resp.StatusCode())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sending slack notification: %w", err)
	}
	logger.FromContext(ctx).Debug("slack notification sent",
		"project_id", cfg.ProjectID, "channel", cfg.Channel)
	return nil
}
