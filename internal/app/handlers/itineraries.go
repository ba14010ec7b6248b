package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/app/domain/itinerary"
	"github.com/FACorreiaa/triply/internal/app/models"
)

// ItineraryGenerator is implemented by *itinerary.Service.
type ItineraryGenerator interface {
	Generate(ctx context.Context, cfg models.TripConfiguration, sink itinerary.ProgressSink) (*models.Itinerary, error)
}

// ItineraryStore keeps generated itineraries for later lookup.
type ItineraryStore interface {
	Put(it *models.Itinerary)
	Get(id string) (*models.Itinerary, bool)
}

type ItineraryHandler struct {
	*BaseHandler
	generator ItineraryGenerator
	store     ItineraryStore
	now       func() time.Time
}

func NewItineraryHandler(generator ItineraryGenerator, store ItineraryStore, logger *zap.Logger) *ItineraryHandler {
	return &ItineraryHandler{
		BaseHandler: NewBaseHandler(logger),
		generator:   generator,
		store:       store,
		now:         time.Now,
	}
}

func (h *ItineraryHandler) bindTrip(c *gin.Context) (models.TripConfiguration, bool) {
	var cfg models.TripConfiguration
	if err := c.ShouldBindJSON(&cfg); err != nil {
		h.BadRequest(c, "invalid_request", "Invalid JSON format: "+err.Error())
		return cfg, false
	}
	if cfg.SubmittedAt.IsZero() {
		cfg.SubmittedAt = h.now()
	}
	return cfg, true
}

// Create POST /api/itineraries
func (h *ItineraryHandler) Create(c *gin.Context) {
	cfg, ok := h.bindTrip(c)
	if !ok {
		return
	}

	it, err := h.generator.Generate(c.Request.Context(), cfg, nil)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	h.store.Put(it)

	c.Header("Location", "/api/itineraries/"+it.Metadata.RequestID)
	c.JSON(http.StatusCreated, it)
}

// Stream POST /api/itineraries/stream answers with server-sent events: one
// "progress" event per phase and then a single "itinerary" event. Failures
// that happen before the first event are plain JSON errors; anything later
// arrives as an "error" event.
func (h *ItineraryHandler) Stream(c *gin.Context) {
	cfg, ok := h.bindTrip(c)
	if !ok {
		return
	}

	started := false
	sink := func(state itinerary.GenerationState) {
		if !started {
			started = true
			c.Header("Content-Type", "text/event-stream")
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			c.Header("X-Accel-Buffering", "no")
			c.Status(http.StatusOK)
		}
		c.SSEvent("progress", state)
		c.Writer.Flush()
	}

	it, err := h.generator.Generate(c.Request.Context(), cfg, sink)
	if err != nil {
		if !started {
			h.RespondError(c, err)
			return
		}
		c.SSEvent("error", gin.H{
			"phase":   itinerary.PhaseFailed,
			"error":   models.KindOf(err).String(),
			"message": err.Error(),
		})
		c.Writer.Flush()
		return
	}
	h.store.Put(it)

	c.SSEvent("itinerary", it)
	c.Writer.Flush()
}

// Get GET /api/itineraries/:id
func (h *ItineraryHandler) Get(c *gin.Context) {
	it, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "itinerary not found or expired",
		})
		return
	}
	c.JSON(http.StatusOK, it)
}
