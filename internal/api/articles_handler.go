package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newsclip/newsclip/internal/database"
	"github.com/newsclip/newsclip/internal/domain"
)

// ArticleStore is the article persistence the handlers need.
type ArticleStore interface {
	ListArticles(ctx context.Context, filter database.ArticleFilter, limit, offset int) ([]*domain.Article, error)
	CountArticles(ctx context.Context, filter database.ArticleFilter) (int, error)
}

// ArticlesHandler handles article HTTP requests.
type ArticlesHandler struct {
	store ArticleStore
}

// NewArticlesHandler creates a new articles handler.
func NewArticlesHandler(store ArticleStore) *ArticlesHandler {
	return &ArticlesHandler{store: store}
}

// ListByVehicle handles GET /api/vehicles/:id/articles
func (h *ArticlesHandler) ListByVehicle(c *gin.Context) {
	limit, offset := pagination(c)

	filter := database.ArticleFilter{
		VehicleID: c.Param("id"),
		SectionID: c.Query("section_id"),
		Search:    c.Query("q"),
	}
	if since := c.Query("published_after"); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "published_after must be RFC 3339"})
			return
		}
		filter.PublishedAfter = &parsed
	}

	articles, err := h.store.ListArticles(c.Request.Context(), filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve articles"})
		return
	}

	total, err := h.store.CountArticles(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get total count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": articles, "total": total})
}
