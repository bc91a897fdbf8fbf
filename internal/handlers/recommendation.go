package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/services"
)

type RecommendationHandler struct {
	logger          *logrus.Logger
	recommendations services.RecommendationServiceInterface
}

func NewRecommendationHandler(logger *logrus.Logger, recommendations services.RecommendationServiceInterface) *RecommendationHandler {
	return &RecommendationHandler{
		logger:          logger,
		recommendations: recommendations,
	}
}

// Get serves GET /api/v1/recommendations/:userId?limit=n.
func (h *RecommendationHandler) Get(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "MISSING_USER_ID",
				"message": "User ID is required",
			},
		})
		return
	}

	limit := 0 // 0 lets the service apply its configured default
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "INVALID_LIMIT",
					"message": "Limit must be a positive integer",
				},
			})
			return
		}
		limit = parsed
	}

	response, err := h.recommendations.Recommend(c.Request.Context(), userID, limit)
	if err != nil {
		if errors.Is(err, services.ErrRecommendationUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": gin.H{
					"code":    "RECOMMENDATIONS_UNAVAILABLE",
					"message": "Recommendations are temporarily unavailable, retry shortly",
				},
			})
			return
		}
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to serve recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": "Failed to serve recommendations",
			},
		})
		return
	}

	c.JSON(http.StatusOK, response)
}
