package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/triply/internal/app/domain/itinerary"
)

type HealthHandler struct {
	status itinerary.ProviderStatus
}

func NewHealthHandler(status itinerary.ProviderStatus) *HealthHandler {
	return &HealthHandler{status: status}
}

// Healthz GET /healthz
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Status GET /api/status
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.status)
}
