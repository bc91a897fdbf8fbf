package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/lumeva/reckon/internal/services"
	"github.com/lumeva/reckon/pkg/models"
)

// EventHandler is the ingest boundary for outside producers: quiz, menu and
// lead flows append events here, and plan generation stores the user profile.
type EventHandler struct {
	logger    *logrus.Logger
	events    services.EventServiceInterface
	validator *validator.Validate
}

func NewEventHandler(logger *logrus.Logger, events services.EventServiceInterface) *EventHandler {
	return &EventHandler{
		logger:    logger,
		events:    events,
		validator: validator.New(),
	}
}

// Ingest serves POST /api/v1/events.
func (h *EventHandler) Ingest(c *gin.Context) {
	var req models.EventRequest
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

	event, err := h.events.Ingest(c.Request.Context(), req)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": req.UserID,
			"kind":    req.Kind,
		}).Error("Failed to ingest event")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "EVENT_INGEST_FAILED",
				"message": "Failed to ingest event",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":    event,
		"message": "Event recorded",
	})
}

// SetPlan serves PUT /api/v1/users/:userId/plan.
func (h *EventHandler) SetPlan(c *gin.Context) {
	userID := c.Param("userId")

	var req models.PlanRequest
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

	if err := h.events.SetPlan(c.Request.Context(), userID, req); err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to store plan")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "PLAN_UPDATE_FAILED",
				"message": "Failed to store plan",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Plan stored",
	})
}
