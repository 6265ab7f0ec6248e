package task

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"wartungsmanager/internal/domain"
	"wartungsmanager/internal/errors"
	"wartungsmanager/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CreateTask(ctx context.Context, tenantID string, maintenanceID uint64, input CreateTaskRequest) (*domain.Task, error) {
	args := m.Called(ctx, tenantID, maintenanceID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockService) ListTasks(ctx context.Context, tenantID string, maintenanceID uint64) ([]domain.Task, error) {
	args := m.Called(ctx, tenantID, maintenanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}

func (m *MockService) UpdateTask(ctx context.Context, tenantID string, id uint64, patch TaskPatch) (*domain.Task, error) {
	args := m.Called(ctx, tenantID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockService) MoveTask(ctx context.Context, tenantID string, id uint64, to int) (*domain.Task, error) {
	args := m.Called(ctx, tenantID, id, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockService) DeleteTask(ctx context.Context, tenantID string, id uint64) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	router := gin.New()
	router.Use(middleware.ErrorHandler(logger))
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextTenantID, "tenant-a")
		c.Next()
	})
	return router
}

func TestCreateTask_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()
	router.POST("/maintenances/:id/tasks", handler.Create)

	mockService.On("CreateTask", mock.Anything, "tenant-a", uint64(5), CreateTaskRequest{Name: "Change oil", TargetTime: 2}).
		Return(&domain.Task{ID: 11, MaintenanceID: 5, Name: "Change oil"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/maintenances/5/tasks", bytes.NewBufferString(`{"name":"Change oil","targetTime":2}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestCreateTask_MissingName(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()
	router.POST("/maintenances/:id/tasks", handler.Create)

	req := httptest.NewRequest(http.MethodPost, "/maintenances/5/tasks", bytes.NewBufferString(`{"targetTime":2}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"Validation failed","fields":{"name":"is required"}}`, w.Body.String())
	mockService.AssertNotCalled(t, "CreateTask")
}

func TestListTasks_MaintenanceNotFound(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()
	router.GET("/maintenances/:id/tasks", handler.List)

	mockService.On("ListTasks", mock.Anything, "tenant-a", uint64(8)).
		Return(nil, errors.NotFound("Maintenance not found", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/maintenances/8/tasks", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateTask_Completed(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()
	router.PATCH("/tasks/:id", handler.Update)

	mockService.On("UpdateTask", mock.Anything, "tenant-a", uint64(3), mock.MatchedBy(func(p TaskPatch) bool {
		return p.Completed != nil && *p.Completed && p.Name == nil && len(p.DocumentIDs) == 1
	})).Return(&domain.Task{ID: 3, Completed: true}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/tasks/3", bytes.NewBufferString(`{"completed":true,"documentIds":[4]}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestUpdateTask_RejectsUnknownKeys(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()
	router.PATCH("/tasks/:id", handler.Update)

	req := httptest.NewRequest(http.MethodPatch, "/tasks/3", bytes.NewBufferString(`{"maintenanceId":9}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockService.AssertNotCalled(t, "UpdateTask")
}

func TestMoveTask(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()
	router.PUT("/tasks/:id/position", handler.Move)

	mockService.On("MoveTask", mock.Anything, "tenant-a", uint64(3), 0).
		Return(&domain.Task{ID: 3, Position: 0}, nil)
	mockService.On("MoveTask", mock.Anything, "tenant-a", uint64(3), 9).
		Return(nil, errors.UnprocessableEntity("Position out of range", ErrPositionOutOfRange))

	req := httptest.NewRequest(http.MethodPut, "/tasks/3/position", bytes.NewBufferString(`{"position":0}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPut, "/tasks/3/position", bytes.NewBufferString(`{"position":9}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	req = httptest.NewRequest(http.MethodPut, "/tasks/3/position", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	mockService.AssertExpectations(t)
}

func TestDeleteTask(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()
	router.DELETE("/tasks/:id", handler.Delete)

	mockService.On("DeleteTask", mock.Anything, "tenant-a", uint64(3)).Return(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/tasks/3", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/tasks/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
