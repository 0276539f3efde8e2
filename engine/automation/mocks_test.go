package automation

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/notify"
	"github.com/flowboard/flowboard/engine/rule"
	"github.com/flowboard/flowboard/engine/task"
)

// MockTaskStore implements TaskStore for testing
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) GetTask(ctx context.Context, id core.ID) (*task.Task, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*task.Task)
	return t, args.Error(1)
}

func (m *MockTaskStore) UpdateTask(ctx context.Context, id core.ID, in *task.UpdateInput) (*task.Task, error) {
	args := m.Called(ctx, id, in)
	t, _ := args.Get(0).(*task.Task)
	return t, args.Error(1)
}

func (m *MockTaskStore) InsertTask(ctx context.Context, in *task.CreateInput) (*task.Task, error) {
	args := m.Called(ctx, in)
	t, _ := args.Get(0).(*task.Task)
	return t, args.Error(1)
}

func (m *MockTaskStore) ListEnabledRules(ctx context.Context, projectID core.ID) ([]*rule.Rule, error) {
	args := m.Called(ctx, projectID)
	rules, _ := args.Get(0).([]*rule.Rule)
	return rules, args.Error(1)
}

func (m *MockTaskStore) AppendExecution(ctx context.Context, e *rule.Execution) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ChannelConfig(ctx context.Context, projectID core.ID) (*notify.ChannelConfig, error) {
	args := m.Called(ctx, projectID)
	cfg, _ := args.Get(0).(*notify.ChannelConfig)
	return cfg, args.Error(1)
}

func (m *MockNotifier) Send(ctx context.Context, cfg *notify.ChannelConfig, message string) error {
	args := m.Called(ctx, cfg, message)
	return args.Error(0)
}

// MockEmailSender implements EmailSender for testing
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendEmail(ctx context.Context, taskID core.ID, p *rule.SendEmailParams) error {
	args := m.Called(ctx, taskID, p)
	return args.Error(0)
}

// MockCommenter implements Commenter for testing
type MockCommenter struct {
	mock.Mock
}

func (m *MockCommenter) AddComment(ctx context.Context, taskID core.ID, p *rule.AddCommentParams) error {
	args := m.Called(ctx, taskID, p)
	return args.Error(0)
}

// fakeClock pins Now for deterministic due-date and completion stamping.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }
