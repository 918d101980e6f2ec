package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/newsclip/newsclip/internal/database"
	"github.com/newsclip/newsclip/internal/domain"
	"github.com/newsclip/newsclip/internal/scheduler"
)

const (
	defaultLimit  = 50
	defaultOffset = 0
)

// ConfigStore is the config persistence the handlers need.
type ConfigStore interface {
	GetByID(ctx context.Context, id string) (*domain.SourceConfig, error)
	List(ctx context.Context, limit, offset int) ([]*domain.SourceConfig, error)
}

// Trigger starts runs on demand.
type Trigger interface {
	TriggerOne(ctx context.Context, configID string) error
	TriggerAll(ctx context.Context) (int, error)
}

// ConfigsHandler handles source config HTTP requests.
type ConfigsHandler struct {
	store   ConfigStore
	trigger Trigger
}

// NewConfigsHandler creates a new configs handler.
func NewConfigsHandler(store ConfigStore, trigger Trigger) *ConfigsHandler {
	return &ConfigsHandler{store: store, trigger: trigger}
}

// List handles GET /api/configs
func (h *ConfigsHandler) List(c *gin.Context) {
	limit, offset := pagination(c)

	configs, err := h.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve configs",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"configs": configs})
}

// Get handles GET /api/configs/:id
func (h *ConfigsHandler) Get(c *gin.Context) {
	id := c.Param("id")

	cfg, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrConfigNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Config not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve config"})
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// TriggerRun handles POST /api/configs/:id/run
func (h *ConfigsHandler) TriggerRun(c *gin.Context) {
	id := c.Param("id")

	err := h.trigger.TriggerOne(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrAlreadyRunning):
			c.JSON(http.StatusConflict, gin.H{"error": "Config already has a run in flight"})
		case errors.Is(err, database.ErrConfigNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Config not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start run"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "started", "config_id": id})
}

// TriggerAll handles POST /api/configs/run-all
func (h *ConfigsHandler) TriggerAll(c *gin.Context) {
	started, err := h.trigger.TriggerAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start runs"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "started", "count": started})
}

// pagination parses limit/offset query parameters with defaults.
func pagination(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}

	offset, err = strconv.Atoi(c.DefaultQuery("offset", strconv.Itoa(defaultOffset)))
	if err != nil || offset < 0 {
		offset = defaultOffset
	}

	return limit, offset
}
