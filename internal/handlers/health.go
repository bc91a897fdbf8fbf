package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/services"
)

type HealthHandler struct {
	logger        *logrus.Logger
	healthService *services.HealthService
}

func NewHealthHandler(logger *logrus.Logger, healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{
		logger:        logger,
		healthService: healthService,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	status := h.healthService.CheckHealth(c.Request.Context())

	var httpStatus int
	switch status.Status {
	case "healthy":
		httpStatus = http.StatusOK
	case "degraded":
		httpStatus = http.StatusOK // still serving, cache fell back
	case "unhealthy":
		httpStatus = http.StatusServiceUnavailable
	default:
		httpStatus = http.StatusInternalServerError
	}

	c.JSON(httpStatus, status)
}

// Ready reports only a verdict, for load balancer probes.
func (h *HealthHandler) Ready(c *gin.Context) {
	status := h.healthService.CheckHealth(c.Request.Context())

	if status.Status == "unhealthy" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ready": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true})
}
