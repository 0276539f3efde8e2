package rulerouter

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flowboard/flowboard/engine/infra/server/router"
	"github.com/flowboard/flowboard/engine/rule"
	"github.com/flowboard/flowboard/engine/rule/uc"
)

// Handler serves the workflow rule admin endpoints.
type Handler struct {
	rules      rule.Repository
	executions rule.ExecutionRepository
}

func NewHandler(rules rule.Repository, executions rule.ExecutionRepository) *Handler {
	return &Handler{rules: rules, executions: executions}
}

func RegisterRoutes(apiBase *gin.RouterGroup, rules rule.Repository, executions rule.ExecutionRepository) {
	handler := NewHandler(rules, executions)
	projects := apiBase.Group("/projects/:project_id")
	{
		projects.POST("/rules", handler.createRule)
		projects.GET("/rules", handler.listRules)
	}
	ruleGroup := apiBase.Group("/rules/:rule_id")
	{
		ruleGroup.GET("", handler.getRule)
		ruleGroup.PATCH("", handler.updateRule)
		ruleGroup.DELETE("", handler.deleteRule)
		ruleGroup.GET("/executions", handler.listRuleExecutions)
	}
	apiBase.GET("/tasks/:task_id/executions", handler.listTaskExecutions)
}

func (h *Handler) createRule(c *gin.Context) {
	projectID, ok := router.ParseIDParam(c, "project_id")
	if !ok {
		return
	}
	var ru rule.Rule
	if err := c.ShouldBindJSON(&ru); err != nil {
		router.RespondWithError(c, router.NewRequestError(
			http.StatusBadRequest, "invalid rule payload", err))
		return
	}
	ru.ProjectID = projectID
	created, err := uc.NewCreateRule(h.rules).Execute(c.Request.Context(), &ru)
	if err != nil {
		router.RespondWithError(c, mapUCError(err))
		return
	}
	router.RespondCreated(c, "rule created", created)
}

func (h *Handler) getRule(c *gin.Context) {
	ruleID, ok := router.ParseIDParam(c, "rule_id")
	if !ok {
		return
	}
	ru, err := uc.NewGetRule(h.rules).Execute(c.Request.Context(), ruleID)
	if err != nil {
		router.RespondWithError(c, mapUCError(err))
		return
	}
	router.RespondOK(c, "rule retrieved", ru)
}

func (h *Handler) listRules(c *gin.Context) {
	projectID, ok := router.ParseIDParam(c, "project_id")
	if !ok {
		return
	}
	rules, err := uc.NewListRules(h.rules).Execute(c.Request.Context(), projectID)
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "rules retrieved", gin.H{"rules": rules})
}

func (h *Handler) updateRule(c *gin.Context) {
	ruleID, ok := router.ParseIDParam(c, "rule_id")
	if !ok {
		return
	}
	var in uc.UpdateRuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		router.RespondWithError(c, router.NewRequestError(
			http.StatusBadRequest, "invalid rule payload", err))
		return
	}
	updated, err := uc.NewUpdateRule(h.rules).Execute(c.Request.Context(), ruleID, &in)
	if err != nil {
		router.RespondWithError(c, mapUCError(err))
		return
	}
	router.RespondOK(c, "rule updated", updated)
}

func (h *Handler) deleteRule(c *gin.Context) {
	ruleID, ok := router.ParseIDParam(c, "rule_id")
	if !ok {
		return
	}
	if err := uc.NewDeleteRule(h.rules).Execute(c.Request.Context(), ruleID); err != nil {
		router.RespondWithError(c, mapUCError(err))
		return
	}
	router.RespondNoContent(c)
}

func (h *Handler) listRuleExecutions(c *gin.Context) {
	ruleID, ok := router.ParseIDParam(c, "rule_id")
	if !ok {
		return
	}
	execs, err := uc.NewListExecutions(h.executions).ByRule(c.Request.Context(), ruleID)
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "executions retrieved", gin.H{"executions": execs})
}

func (h *Handler) listTaskExecutions(c *gin.Context) {
	taskID, ok := router.ParseIDParam(c, "task_id")
	if !ok {
		return
	}
	execs, err := uc.NewListExecutions(h.executions).ByTask(c.Request.Context(), taskID)
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "executions retrieved", gin.H{"executions": execs})
}

func mapUCError(err error) error {
	switch {
	case errors.Is(err, uc.ErrInvalidInput):
		return router.NewRequestError(http.StatusBadRequest, "invalid rule payload", err)
	case errors.Is(err, uc.ErrNotFound):
		return router.NewRequestError(http.StatusNotFound, "rule not found", err)
	default:
		return err
	}
}
