package notifyrouter

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/flowboard/flowboard/engine/infra/server/router"
	"github.com/flowboard/flowboard/engine/notify"
)

// Handler serves the per-project notification channel configuration.
type Handler struct {
	channels notify.ChannelRepository
}

func NewHandler(channels notify.ChannelRepository) *Handler {
	return &Handler{channels: channels}
}

func RegisterRoutes(apiBase *gin.RouterGroup, channels notify.ChannelRepository) {
	handler := NewHandler(channels)
	group := apiBase.Group("/projects/:project_id/notification-channel")
	{
		group.GET("", handler.getChannel)
		group.PUT("", handler.putChannel)
	}
}

func (h *Handler) getChannel(c *gin.Context) {
	projectID, ok := router.ParseIDParam(c, "project_id")
	if !ok {
		return
	}
	cfg, err := h.channels.GetByProject(c.Request.Context(), projectID)
	if err != nil {
		router.RespondWithError(c, err)
		return
	}
	if cfg == nil {
		router.RespondWithError(c, router.NewRequestError(
			http.StatusNotFound, "notification channel not configured", nil))
		return
	}
	router.RespondOK(c, "notification channel retrieved", cfg)
}

func (h *Handler) putChannel(c *gin.Context) {
	projectID, ok := router.ParseIDParam(c, "project_id")
	if !ok {
		return
	}
	var cfg notify.ChannelConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		router.RespondWithError(c, router.NewRequestError(
			http.StatusBadRequest, "invalid channel payload", err))
		return
	}
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		router.RespondWithError(c, router.NewRequestError(
			http.StatusBadRequest, "webhook_url is required", nil))
		return
	}
	cfg.ProjectID = projectID
	if err := h.channels.Upsert(c.Request.Context(), &cfg); err != nil {
		router.RespondWithError(c, err)
		return
	}
	router.RespondOK(c, "notification channel saved", cfg)
}
