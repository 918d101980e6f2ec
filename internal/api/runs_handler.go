package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/newsclip/newsclip/internal/database"
	"github.com/newsclip/newsclip/internal/domain"
	"github.com/newsclip/newsclip/internal/runlog"
)

// RunStore is the run persistence the handlers need.
type RunStore interface {
	GetByID(ctx context.Context, id string) (*domain.Run, error)
	ListByConfig(ctx context.Context, configID string, limit, offset int) ([]*domain.Run, error)
}

// RunsHandler handles run HTTP requests.
type RunsHandler struct {
	store RunStore
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(store RunStore) *RunsHandler {
	return &RunsHandler{store: store}
}

// Get handles GET /api/runs/:id
func (h *RunsHandler) Get(c *gin.Context) {
	run, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve run"})
		return
	}

	c.JSON(http.StatusOK, run)
}

// GetLog handles GET /api/runs/:id/log. The stored log is decoded into
// structured events regardless of the format it was written in; an optional
// level query parameter filters the events.
func (h *RunsHandler) GetLog(c *gin.Context) {
	run, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve run"})
		return
	}

	events := runlog.Decode(run.Log)

	if level := c.Query("level"); level != "" {
		filtered := make([]runlog.Event, 0, len(events))
		for _, ev := range events {
			if ev.Level == level {
				filtered = append(filtered, ev)
			}
		}
		events = filtered
	}

	c.JSON(http.StatusOK, gin.H{"run_id": run.ID, "events": events})
}

// ListByConfig handles GET /api/configs/:id/runs
func (h *RunsHandler) ListByConfig(c *gin.Context) {
	limit, offset := pagination(c)

	runs, err := h.store.ListByConfig(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
