package tkrouter

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flowboard/flowboard/engine/infra/server/router"
	"github.com/flowboard/flowboard/engine/task"
	"github.com/flowboard/flowboard/engine/task/uc"
)

// Handler serves the task endpoints.
type Handler struct {
	repo   task.Repository
	engine uc.EventProcessor
}

func NewHandler(repo task.Repository, engine uc.EventProcessor) *Handler {
	return &Handler{repo: repo, engine: engine}
}

func RegisterRoutes(apiBase *gin.RouterGroup, repo task.Repository, engine uc.EventProcessor) {
	handler := NewHandler(repo, engine)
	projects := apiBase.Group("/projects/:project_id")
	{
		projects.POST("/tasks", handler.createTask)
		projects.GET("/tasks", handler.listTasks)
	}
	tasks := apiBase.Group("/tasks/:task_id")
	{
		tasks.GET("", handler.getTask)
		tasks.PATCH("", handler.updateTask)
	}
}

func (h *Handler) createTask(c *gin.Context) {
	projectID, ok := router.ParseIDParam(c, "project_id")
	if !ok {
		return
	}
	var in task.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		router.RespondWithError(c, router.NewRequestError(
			http.StatusBadRequest, "invalid task payload", err))
		return
	}
	in.ProjectID = projectID
	created, err := uc.NewCreate(h.repo, h.engine).Execute(c.Request.Context(), &in)
	if err != nil {
		router.RespondWithError(c, mapUCError(err))
		return
	}
	router.RespondCreated(c, "task created", created)
}

func (h *Handler) getTask(c *gin.Context) {
	taskID, ok := router.ParseIDParam(c, "task_id")
	if !ok {
		return
	}
	t, err := uc.NewGet(h.repo).Execute(c.Request.Context(), taskID)
	if err != nil {
		router.RespondWithError(c, mapUCError(err))
		return
	}
	router.RespondOK(c, "task retrieved", t)
}

func (h *Handler) listTasks(c *gin.Context) {
	projectID, ok := router.ParseIDParam(c, "project_id")
	if !ok {
		return
	}
	tasks, err := uc.NewList(h.repo).Execute(c.Request.Context(), projectID)
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "tasks retrieved", gin.H{"tasks": tasks})
}

func (h *Handler) updateTask(c *gin.Context) {
	taskID, ok := router.ParseIDParam(c, "task_id")
	if !ok {
		return
	}
	var in task.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		router.RespondWithError(c, router.NewRequestError(
			http.StatusBadRequest, "invalid task payload", err))
		return
	}
	updated, err := uc.NewUpdate(h.repo, h.engine).Execute(c.Request.Context(), taskID, &in)
	if err != nil {
		router.RespondWithError(c, mapUCError(err))
		return
	}
	router.RespondOK(c, "task updated", updated)
}

func mapUCError(err error) error {
	switch {
	case errors.Is(err, uc.ErrInvalidInput):
		return router.NewRequestError(http.StatusBadRequest, "invalid task payload", err)
	case errors.Is(err, uc.ErrNotFound):
		return router.NewRequestError(http.StatusNotFound, "task not found", err)
	default:
		return err
	}
}
