package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/services"
)

// MetricsHandler exposes the business engagement counters. Prometheus
// instrumentation lives on /metrics, not here.
type MetricsHandler struct {
	logger   *logrus.Logger
	feedback services.FeedbackServiceInterface
}

func NewMetricsHandler(logger *logrus.Logger, feedback services.FeedbackServiceInterface) *MetricsHandler {
	return &MetricsHandler{
		logger:   logger,
		feedback: feedback,
	}
}

// Engagement serves GET /api/v1/metrics/engagement.
func (h *MetricsHandler) Engagement(c *gin.Context) {
	metrics, err := h.feedback.Metrics(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to read engagement metrics")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "METRICS_UNAVAILABLE",
				"message": "Failed to read engagement metrics",
			},
		})
		return
	}

	c.JSON(http.StatusOK, metrics)
}
