package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"wartungsmanager/auth"
	"wartungsmanager/internal/clock"
	"wartungsmanager/internal/comment"
	"wartungsmanager/internal/config"
	"wartungsmanager/internal/document"
	"wartungsmanager/internal/health"
	"wartungsmanager/internal/maintenance"
	"wartungsmanager/internal/middleware"
	"wartungsmanager/internal/scheduler"
	"wartungsmanager/internal/task"
	"wartungsmanager/internal/testutil"
	"wartungsmanager/internal/worker"
	"wartungsmanager/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("router-test-secret")

type testApp struct {
	router *gin.Engine
	clock  *clock.Manual
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := testutil.NewDB(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cache := redis.NewCache(nil)
	pool := worker.NewWorkerPool(2, logger)
	t.Cleanup(pool.Shutdown)
	clk := clock.NewManual(time.Date(2024, time.March, 6, 9, 0, 0, 0, time.UTC))

	docService := document.NewService(document.NewRepository(gdb), logger)
	maintenanceService := maintenance.NewService(maintenance.NewRepository(gdb), cache, pool, clk, logger, time.Minute)
	cfg := config.Config{
		Environment:       "development",
		StatusSweepCron:   "0 2 * * *",
		DocumentPurgeCron: "30 2 * * *",
		CronUseUTC:        true,
		SweepLockTTL:      time.Minute,
	}

	router := setupRouter(cfg, logger, &middleware.Auth{JWTSecret: testSecret, InternalSecret: "internal"}, handlers{
		maintenance: maintenance.NewHandler(maintenanceService),
		task:        task.NewHandler(task.NewService(task.NewRepository(gdb), clk, logger)),
		comment:     comment.NewHandler(comment.NewService(comment.NewRepository(gdb), logger)),
		document:    document.NewHandler(docService),
		jobs:        scheduler.NewHandler(newScheduler(cfg, cache, logger, maintenanceService, docService)),
		health: health.Handler(map[string]health.Pinger{
			"database": func(ctx context.Context) error { return nil },
		}),
	})
	return testApp{router: router, clock: clk}
}

func token(t *testing.T, tenantID string, roles ...string) string {
	t.Helper()
	signed, err := auth.GenerateJWT(testSecret, tenantID, "user-1", roles, time.Hour)
	require.NoError(t, err)
	return "Bearer " + signed
}

func (a testApp) do(t *testing.T, method, path, authorization string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRoutes_Auth(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/healthz", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/maintenances", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/maintenances", "Bearer garbage", nil).Code)

	viewer := token(t, "tenant-a", "viewer")
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/maintenances", viewer, nil).Code)
	assert.Equal(t, http.StatusForbidden, app.do(t, http.MethodPost, "/maintenances", viewer, map[string]string{"title": "x"}).Code)

	assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodPost, "/internal/sweep", viewer, nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/internal/sweep", "Bearer internal", nil).Code)
	assert.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/internal/documents/purge", "Bearer internal", nil).Code)
}

func TestRoutes_MaintenanceLifecycle(t *testing.T) {
	app := newTestApp(t)
	writer := token(t, "tenant-a", auth.RoleMaintenance)

	w := app.do(t, http.MethodPost, "/maintenances", writer, map[string]interface{}{
		"title":            "Press inspection",
		"dueDate":          "2024-03-08T12:00:00Z",
		"earliestExecTime": "2024-03-04T08:00:00Z",
		"interval":         7,
		"intervalUnit":     86400,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]interface{}](t, w)
	id := uint64(created["id"].(float64))
	assert.Equal(t, "dueSoon", created["status"])

	for _, name := range []string{"Replace filter", "Check hydraulics"} {
		w = app.do(t, http.MethodPost, fmt.Sprintf("/maintenances/%d/tasks", id), writer, map[string]interface{}{"name": name, "targetTime": 1})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = app.do(t, http.MethodGet, fmt.Sprintf("/maintenances/%d/tasks", id), writer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decode[struct {
		Data []struct {
			ID       uint64 `json:"id"`
			Name     string `json:"name"`
			Position int    `json:"position"`
		} `json:"data"`
	}](t, w).Data
	require.Len(t, tasks, 2)
	assert.Equal(t, "Check hydraulics", tasks[0].Name)

	w = app.do(t, http.MethodPost, fmt.Sprintf("/maintenances/%d/complete", id), writer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]interface{}](t, w)["completed"])

	for _, tk := range tasks {
		w = app.do(t, http.MethodPost, fmt.Sprintf("/tasks/%d/comments", tk.ID), writer, map[string]interface{}{"duration": 2, "comment": "done"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		w = app.do(t, http.MethodPatch, fmt.Sprintf("/tasks/%d", tk.ID), writer, map[string]interface{}{"completed": true})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = app.do(t, http.MethodPost, fmt.Sprintf("/maintenances/%d/complete", id), writer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[struct {
		Completed   bool `json:"completed"`
		Maintenance struct {
			Status            string  `json:"status"`
			PlannedTime       float64 `json:"plannedTime"`
			ActuallySpendTime float64 `json:"actuallySpendTime"`
		} `json:"maintenance"`
		Successor *struct {
			DueDate  time.Time `json:"dueDate"`
			ParentID uint64    `json:"parentId"`
		} `json:"successor"`
	}](t, w)
	assert.True(t, result.Completed)
	assert.Equal(t, "completed", result.Maintenance.Status)
	assert.Equal(t, 2.0, result.Maintenance.PlannedTime)
	assert.Equal(t, 4.0, result.Maintenance.ActuallySpendTime)
	require.NotNil(t, result.Successor)
	assert.Equal(t, id, result.Successor.ParentID)
	assert.True(t, time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC).Equal(result.Successor.DueDate))

	other := token(t, "tenant-b", auth.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, fmt.Sprintf("/maintenances/%d", id), other, nil).Code)

	w = app.do(t, http.MethodGet, "/maintenances?completed=false", writer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[maintenance.PaginatedMaintenances](t, w)
	require.Len(t, page.Data, 1)
	assert.Equal(t, id, *page.Data[0].ParentID)
}
