package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/triply/internal/app/handlers"
)

type AppHandlers struct {
	Health      *handlers.HealthHandler
	Locations   *handlers.LocationHandler
	LiveSearch  *handlers.LiveSearchHandler
	Itineraries *handlers.ItineraryHandler
}

// Setup registers every API route on r.
func Setup(r *gin.Engine, h *AppHandlers) {
	r.GET("/healthz", h.Health.Healthz)

	api := r.Group("/api")
	{
		api.GET("/status", h.Health.Status)
		api.GET("/locations", h.Locations.Search)
		api.GET("/locations/live", h.LiveSearch.Live)

		itineraries := api.Group("/itineraries")
		itineraries.POST("", h.Itineraries.Create)
		itineraries.POST("/stream", h.Itineraries.Stream)
		itineraries.GET("/:id", h.Itineraries.Get)
	}
}
