package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lumeva/reckon/pkg/models"
)

type MockEventService struct {
	mock.Mock
}

func (m *MockEventService) Ingest(ctx context.Context, req models.EventRequest) (*models.Event, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventService) SetPlan(ctx context.Context, userID string, req models.PlanRequest) error {
	args := m.Called(ctx, userID, req)
	return args.Error(0)
}

func eventRouter(mockService *MockEventService) *gin.Engine {
	handler := NewEventHandler(testLogger(), mockService)
	router := gin.New()
	router.POST("/api/v1/events", handler.Ingest)
	router.PUT("/api/v1/users/:userId/plan", handler.SetPlan)
	return router
}

func TestEventHandler_Ingest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("appends event", func(t *testing.T) {
		mockService := new(MockEventService)
		stored := &models.Event{
			ID:        uuid.New(),
			UserID:    "u1",
			Kind:      models.EventQuizCompleted,
			CreatedAt: time.Now(),
		}
		mockService.On("Ingest", mock.Anything, mock.MatchedBy(func(req models.EventRequest) bool {
			return req.UserID == "u1" && req.Kind == models.EventQuizCompleted
		})).Return(stored, nil)
		router := eventRouter(mockService)

		body := `{"user_id": "u1", "kind": "quiz_completed", "payload": {"quiz": "sleep", "level": "moderate", "items": ["mag-b6"]}}`
		req, _ := http.NewRequest("POST", "/api/v1/events", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("missing kind fails validation", func(t *testing.T) {
		mockService := new(MockEventService)
		router := eventRouter(mockService)

		req, _ := http.NewRequest("POST", "/api/v1/events", bytes.NewBufferString(`{"user_id": "u1"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Ingest")
	})
}

func TestEventHandler_SetPlan(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("stores plan", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("SetPlan", mock.Anything, "u1", models.PlanRequest{
			Context: "sleep",
			Level:   "moderate",
			Items:   []string{"mag-b6", "melatonin"},
		}).Return(nil)
		router := eventRouter(mockService)

		body := `{"context": "sleep", "level": "moderate", "items": ["mag-b6", "melatonin"]}`
		req, _ := http.NewRequest("PUT", "/api/v1/users/u1/plan", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("store failure maps to 500", func(t *testing.T) {
		mockService := new(MockEventService)
		mockService.On("SetPlan", mock.Anything, "u1", mock.Anything).Return(assert.AnError)
		router := eventRouter(mockService)

		req, _ := http.NewRequest("PUT", "/api/v1/users/u1/plan", bytes.NewBufferString(`{"context": "sleep"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockService.AssertExpectations(t)
	})
}
