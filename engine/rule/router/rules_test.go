package rulerouter

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/flowboard/engine/core"
	"github.com/flowboard/flowboard/engine/infra/store"
	"github.com/flowboard/flowboard/engine/rule"
)

type memRuleRepo struct {
	rules map[core.ID]*rule.Rule
}

func newMemRuleRepo() *memRuleRepo {
	return &memRuleRepo{rules: make(map[core.ID]*rule.Rule)}
}

func (r *memRuleRepo) Get(_ context.Context, id core.ID) (*rule.Rule, error) {
	ru, ok := r.rules[id]
	if !ok {
		return nil, store.ErrRuleNotFound
	}
	clone := *ru
	return &clone, nil
}

func (r *memRuleRepo) Create(_ context.Context, ru *rule.Rule) error {
	if err := ru.Validate(); err != nil {
		return err
	}
	if ru.ID.IsZero() {
		ru.ID = core.MustNewID()
	}
	ru.CreatedAt = time.Now().UTC()
	ru.UpdatedAt = ru.CreatedAt
	clone := *ru
	r.rules[ru.ID] = &clone
	return nil
}

func (r *memRuleRepo) Update(_ context.Context, ru *rule.Rule) error {
	if _, ok := r.rules[ru.ID]; !ok {
		return store.ErrRuleNotFound
	}
	ru.UpdatedAt = time.Now().UTC()
	clone := *ru
	r.rules[ru.ID] = &clone
	return nil
}

func (r *memRuleRepo) Delete(_ context.Context, id core.ID) error {
	if _, ok := r.rules[id]; !ok {
		return store.ErrRuleNotFound
	}
	delete(r.rules, id)
	return nil
}

func (r *memRuleRepo) ListByProject(_ context.Context, projectID core.ID) ([]*rule.Rule, error) {
	var out []*rule.Rule
	for _, ru := range r.rules {
		if ru.ProjectID == projectID {
			clone := *ru
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memRuleRepo) ListEnabledByProject(ctx context.Context, projectID core.ID) ([]*rule.Rule, error) {
	all, err := r.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	var out []*rule.Rule
	for _, ru := range all {
		if ru.Enabled {
			out = append(out, ru)
		}
	}
	return out, nil
}

type memExecRepo struct {
	execs []*rule.Execution
}

func (r *memExecRepo) Append(_ context.Context, e *rule.Execution) error {
	r.execs = append(r.execs, e)
	return nil
}

func (r *memExecRepo) ListByRule(_ context.Context, ruleID core.ID) ([]*rule.Execution, error) {
	var out []*rule.Execution
	for _, e := range r.execs {
		if e.RuleID == ruleID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memExecRepo) ListByTask(_ context.Context, taskID core.ID) ([]*rule.Execution, error) {
	var out []*rule.Execution
	for _, e := range r.execs {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}

func setupRouter(rules rule.Repository, execs rule.ExecutionRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v0")
	RegisterRoutes(api, rules, execs)
	return r
}

func TestCreateRuleHandler(t *testing.T) {
	t.Run("Should create a valid rule", func(t *testing.T) {
		repo := newMemRuleRepo()
		r := setupRouter(repo, &memExecRepo{})
		projectID := core.MustNewID()
		body := []byte(`{
			"name": "Notify on completion",
			"enabled": true,
			"trigger": "task_completed",
			"conditions": [{"field": "priority", "operator": "equals", "value": "high"}],
			"actions": [{"type": "send_notification", "params": {"message": "done"}}]
		}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v0/projects/"+projectID.String()+"/rules", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "rule created")
		require.Len(t, repo.rules, 1)
		for _, ru := range repo.rules {
			assert.Equal(t, projectID, ru.ProjectID)
		}
	})
	t.Run("Should reject rule without actions", func(t *testing.T) {
		r := setupRouter(newMemRuleRepo(), &memExecRepo{})
		projectID := core.MustNewID()
		body := []byte(`{"name": "No actions", "trigger": "task_created", "actions": []}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v0/projects/"+projectID.String()+"/rules", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
	t.Run("Should reject condition naming unknown field", func(t *testing.T) {
		r := setupRouter(newMemRuleRepo(), &memExecRepo{})
		projectID := core.MustNewID()
		body := []byte(`{
			"name": "Bad field",
			"trigger": "task_created",
			"conditions": [{"field": "nonexistent", "operator": "equals", "value": 1}],
			"actions": [{"type": "send_notification", "params": {}}]
		}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v0/projects/"+projectID.String()+"/rules", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateRuleHandler(t *testing.T) {
	t.Run("Should patch only provided fields", func(t *testing.T) {
		repo := newMemRuleRepo()
		r := setupRouter(repo, &memExecRepo{})
		ru := &rule.Rule{
			ProjectID: core.MustNewID(),
			Name:      "Original",
			Enabled:   true,
			Trigger:   rule.TriggerTaskCreated,
			Actions: []rule.Action{
				{Type: rule.ActionSendNotification, SendNotification: &rule.SendNotificationParams{}},
			},
		}
		require.NoError(t, repo.Create(context.Background(), ru))
		req := httptest.NewRequest(http.MethodPatch, "/api/v0/rules/"+ru.ID.String(),
			bytes.NewReader([]byte(`{"enabled": false}`)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		stored := repo.rules[ru.ID]
		assert.False(t, stored.Enabled)
		assert.Equal(t, "Original", stored.Name)
	})
	t.Run("Should return 404 for unknown rule", func(t *testing.T) {
		r := setupRouter(newMemRuleRepo(), &memExecRepo{})
		req := httptest.NewRequest(http.MethodPatch, "/api/v0/rules/"+core.MustNewID().String(),
			bytes.NewReader([]byte(`{"enabled": false}`)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"RULE_NOT_FOUND"`)
	})
}

func TestDeleteRuleHandler(t *testing.T) {
	t.Run("Should delete rule and return no content", func(t *testing.T) {
		repo := newMemRuleRepo()
		r := setupRouter(repo, &memExecRepo{})
		ru := &rule.Rule{
			ProjectID: core.MustNewID(),
			Name:      "Short lived",
			Trigger:   rule.TriggerTaskCreated,
			Actions: []rule.Action{
				{Type: rule.ActionSendNotification, SendNotification: &rule.SendNotificationParams{}},
			},
		}
		require.NoError(t, repo.Create(context.Background(), ru))
		req := httptest.NewRequest(http.MethodDelete, "/api/v0/rules/"+ru.ID.String(), http.NoBody)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, repo.rules)
	})
}

func TestListExecutionsHandlers(t *testing.T) {
	t.Run("Should list executions for a rule and a task", func(t *testing.T) {
		execRepo := &memExecRepo{}
		r := setupRouter(newMemRuleRepo(), execRepo)
		ruleID := core.MustNewID()
		taskID := core.MustNewID()
		require.NoError(t, execRepo.Append(context.Background(), &rule.Execution{
			ID:              core.MustNewID(),
			RuleID:          ruleID,
			TaskID:          taskID,
			Success:         true,
			ActionsExecuted: 2,
		}))
		req := httptest.NewRequest(http.MethodGet, "/api/v0/rules/"+ruleID.String()+"/executions", http.NoBody)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), ruleID.String())

		req = httptest.NewRequest(http.MethodGet, "/api/v0/tasks/"+taskID.String()+"/executions", http.NoBody)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), taskID.String())
	})
}
