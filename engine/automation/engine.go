package automation

import (
	"context"
	"fmt"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/notify"
	"github.com/flowboard/flowboard/engine/rule"
	"github.com/flowboard/flowboard/engine/task"
	"github.com/flowboard/flowboard/pkg/logger"
)

// Result is the outcome of evaluating one rule against one event.
type Result struct {
	Success         bool
	ActionsExecuted int
	Err             error
}

// Engine matches task lifecycle events against workflow rules and executes
// the resulting actions. All collaborators are injected; the engine keeps no
// global state and is safe for concurrent use across distinct tasks.
type Engine struct {
	store    TaskStore
	notifier Notifier
	clock    Clock
	executor *Executor
}

// Option overrides an optional engine collaborator.
type Option func(*Engine)

func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithEmailSender(s EmailSender) Option {
	return func(e *Engine) { e.executor.email = s }
}

func WithCommenter(c Commenter) Option {
	return func(e *Engine) { e.executor.commenter = c }
}

func NewEngine(store TaskStore, notifier Notifier, opts ...Option) *Engine {
	e := &Engine{
		store:    store,
		notifier: notifier,
		clock:    SystemClock(),
	}
	e.executor = NewExecutor(store, notifier, notify.NewLogEmailSender(), notify.NewLogCommenter(), e.clock)
	for _, opt := range opts {
		opt(e)
	}
	// Options may have replaced the clock after the executor captured it.
	e.executor.clock = e.clock
	return e
}

// ExecuteRule evaluates a single rule against an event: trigger match, then
// conditions, then actions in order. A trigger or condition miss is a silent
// no-op with no audit record. Once the action stage is reached, exactly one
// execution record is appended reflecting the outcome; the first action
// error aborts the rule's remaining actions without rolling back earlier
// side effects.
func (e *Engine) ExecuteRule(ctx context.Context, r *rule.Rule, t *task.Task, evType EventType, old *task.Task) Result {
	if !TriggerMatches(r.Trigger, evType, t, old, e.clock.Now()) {
		return Result{Success: true}
	}
	if !EvaluateConditions(t, r.Conditions) {
		return Result{Success: true}
	}
	log := logger.FromContext(ctx)
	executed := 0
	var execErr error
	for i := range r.Actions {
		if err := e.executor.Execute(ctx, t, &r.Actions[i]); err != nil {
			execErr = err
			break
		}
		executed++
	}
	record := &rule.Execution{
		ID:              core.MustNewID(),
		RuleID:          r.ID,
		TaskID:          t.ID,
		Success:         execErr == nil,
		ActionsExecuted: executed,
		CreatedAt:       e.clock.Now(),
	}
	if execErr != nil {
		record.Error = execErr.Error()
		log.Warn("workflow rule failed",
			"rule_id", r.ID, "task_id", t.ID,
			"actions_executed", executed, "error", execErr)
	}
	if err := e.store.AppendExecution(ctx, record); err != nil {
		// The audit trail is best-effort: a failed append must not turn a
		// successful rule run into a failure.
		log.Error("failed to append execution record",
			"rule_id", r.ID, "task_id", t.ID, "error", err)
	}
	return Result{Success: execErr == nil, ActionsExecuted: executed, Err: execErr}
}

// ProcessTaskEvent loads the enabled rules of the task's project and
// evaluates each one sequentially. Failures are logged, never returned: the
// workflow pass is best-effort and must not surface to the caller that
// mutated the task.
func (e *Engine) ProcessTaskEvent(ctx context.Context, ev *Event) {
	log := logger.FromContext(ctx)
	if ev == nil || ev.Task == nil {
		log.Warn("dropping workflow event without a task snapshot")
		return
	}
	projectID := ev.Task.ProjectID
	rules, err := e.store.ListEnabledRules(ctx, projectID)
	if err != nil {
		log.Error("failed to load workflow rules", "project_id", projectID, "error", err)
		return
	}
	for _, r := range rules {
		res := e.runRule(ctx, r, ev)
		if res.Err != nil {
			continue
		}
		if res.ActionsExecuted > 0 {
			log.Debug("workflow rule executed",
				"rule_id", r.ID, "task_id", ev.Task.ID,
				"actions_executed", res.ActionsExecuted)
		}
	}
}

// runRule isolates one rule's evaluation so that a malformed rule, or a
// panic inside an action, cannot block the remaining rules of the event.
func (e *Engine) runRule(ctx context.Context, r *rule.Rule, ev *Event) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("rule evaluation panicked: %v", rec)
			logger.FromContext(ctx).Error("workflow rule panicked",
				"rule_id", r.ID, "task_id", ev.Task.ID, "panic", rec)
			res = Result{Success: false, Err: err}
		}
	}()
	return e.ExecuteRule(ctx, r, ev.Task, ev.Type, ev.OldTask)
}
