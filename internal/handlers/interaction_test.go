package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/lumeva/reckon/pkg/models"
)

type MockFeedbackService struct {
	mock.Mock
}

func (m *MockFeedbackService) MarkShown(ctx context.Context, userID string, itemIDs []string) error {
	args := m.Called(ctx, userID, itemIDs)
	return args.Error(0)
}

func (m *MockFeedbackService) MarkClicked(ctx context.Context, userID, itemID string) error {
	args := m.Called(ctx, userID, itemID)
	return args.Error(0)
}

func (m *MockFeedbackService) Metrics(ctx context.Context) (*models.EngagementMetrics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EngagementMetrics), args.Error(1)
}

func interactionRouter(mockService *MockFeedbackService) *gin.Engine {
	handler := NewInteractionHandler(testLogger(), mockService)
	router := gin.New()
	router.POST("/api/v1/recommendations/:userId/shown", handler.Shown)
	router.POST("/api/v1/recommendations/:userId/click", handler.Click)
	return router
}

func TestInteractionHandler_Shown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           string
		setup          func(*MockFeedbackService)
		expectedStatus int
	}{
		{
			name: "records shown items",
			body: `{"item_ids": ["mag-b6", "omega-3"]}`,
			setup: func(m *MockFeedbackService) {
				m.On("MarkShown", mock.Anything, "u1", []string{"mag-b6", "omega-3"}).Return(nil)
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "malformed body",
			body:           `{"item_ids": "not-a-list"}`,
			setup:          func(m *MockFeedbackService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty item list fails validation",
			body:           `{"item_ids": []}`,
			setup:          func(m *MockFeedbackService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockFeedbackService)
			tt.setup(mockService)
			router := interactionRouter(mockService)

			req, _ := http.NewRequest("POST", "/api/v1/recommendations/u1/shown", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestInteractionHandler_Click(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("records click", func(t *testing.T) {
		mockService := new(MockFeedbackService)
		mockService.On("MarkClicked", mock.Anything, "u1", "mag-b6").Return(nil)
		router := interactionRouter(mockService)

		req, _ := http.NewRequest("POST", "/api/v1/recommendations/u1/click", bytes.NewBufferString(`{"item_id": "mag-b6"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("missing item_id fails validation", func(t *testing.T) {
		mockService := new(MockFeedbackService)
		router := interactionRouter(mockService)

		req, _ := http.NewRequest("POST", "/api/v1/recommendations/u1/click", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "MarkClicked")
	})

	t.Run("store failure maps to 500", func(t *testing.T) {
		mockService := new(MockFeedbackService)
		mockService.On("MarkClicked", mock.Anything, "u1", "mag-b6").
			Return(assert.AnError)
		router := interactionRouter(mockService)

		req, _ := http.NewRequest("POST", "/api/v1/recommendations/u1/click", bytes.NewBufferString(`{"item_id": "mag-b6"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockService.AssertExpectations(t)
	})
}
