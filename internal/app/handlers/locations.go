package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/app/domain/geocoding"
	"github.com/FACorreiaa/triply/internal/app/models"
)

const maxLocationLimit = 50

// LocationSearcher is the geocoding call the handler needs.
type LocationSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.Location, error)
}

type LocationHandler struct {
	*BaseHandler
	searcher     LocationSearcher
	defaultLimit int
}

func NewLocationHandler(searcher LocationSearcher, defaultLimit int, logger *zap.Logger) *LocationHandler {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &LocationHandler{
		BaseHandler:  NewBaseHandler(logger),
		searcher:     searcher,
		defaultLimit: defaultLimit,
	}
}

// Search GET /api/locations?q=&limit=
func (h *LocationHandler) Search(c *gin.Context) {
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLocationLimit {
			h.BadRequest(c, "invalid_parameter", "limit must be an integer between 1 and 50")
			return
		}
		limit = n
	}

	locations, err := h.searcher.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, geocoding.SortByImportance(locations))
}
