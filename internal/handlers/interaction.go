package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/services"
	"github.com/lumeva/reckon/pkg/models"
)

// InteractionHandler records the shown/click telemetry that feeds the
// feedback loop.
type InteractionHandler struct {
	logger    *logrus.Logger
	feedback  services.FeedbackServiceInterface
	validator *validator.Validate
}

func NewInteractionHandler(logger *logrus.Logger, feedback services.FeedbackServiceInterface) *InteractionHandler {
	return &InteractionHandler{
		logger:    logger,
		feedback:  feedback,
		validator: validator.New(),
	}
}

// Shown serves POST /api/v1/recommendations/:userId/shown.
func (h *InteractionHandler) Shown(c *gin.Context) {
	userID := c.Param("userId")

	var req models.ShownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format",
				"details": err.Error(),
			},
		})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Request validation failed",
				"details": err.Error(),
			},
		})
		return
	}

	if err := h.feedback.MarkShown(c.Request.Context(), userID, req.ItemIDs); err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to record shown items")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "FEEDBACK_FAILED",
				"message": "Failed to record shown items",
			},
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Shown items recorded",
	})
}

// Click serves POST /api/v1/recommendations/:userId/click. Besides the
// counters this invalidates the user's cached recommendations.
func (h *InteractionHandler) Click(c *gin.Context) {
	userID := c.Param("userId")

	var req models.ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid request format",
				"details": err.Error(),
			},
		})
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{
				"code":    "VALIDATION_FAILED",
				"message": "Request validation failed",
				"details": err.Error(),
			},
		})
		return
	}

	if err := h.feedback.MarkClicked(c.Request.Context(), userID, req.ItemID); err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"item_id": req.ItemID,
		}).Error("Failed to record click")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "FEEDBACK_FAILED",
				"message": "Failed to record click",
			},
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Click recorded",
	})
}
