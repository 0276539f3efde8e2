package notify

import (
	"context"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/rule"
	"github.com/flowboard/flowboard/pkg/logger"
)

// LogEmailSender stands in for the external mail service: it logs the
// dispatch and succeeds. Swap in a real sender via automation.WithEmailSender.
type LogEmailSender struct{}

func NewLogEmailSender() *LogEmailSender { return &LogEmailSender{} }

func (s *LogEmailSender) SendEmail(ctx context.Context, taskID core.ID, p *rule.SendEmailParams) error {
	logger.FromContext(ctx).Info("email dispatch requested",
		"task_id", taskID, "to", p.To, "subject", p.Subject)
	return nil
}

// LogCommenter stands in for the comments service: it logs and succeeds.
type LogCommenter struct{}

func NewLogCommenter() *LogCommenter { return &LogCommenter{} }

func (c *LogCommenter) AddComment(ctx context.Context, taskID core.ID, p *rule.AddCommentParams) error {
	logger.FromContext(ctx).Info("comment dispatch requested",
		"task_id", taskID, "author", p.Author)
	return nil
}
