package scheduler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"wartungsmanager/internal/middleware"
	"wartungsmanager/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisLib "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduler(t *testing.T) (*Scheduler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redisLib.NewClient(&redisLib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(redis.NewCache(client), time.Minute, time.UTC, logger), mr
}

func TestParseCron(t *testing.T) {
	_, err := ParseCron("0 2 * * *")
	assert.NoError(t, err)

	_, err = ParseCron("@daily")
	assert.Error(t, err)
	_, err = ParseCron("0 0 2 * * *")
	assert.Error(t, err)
}

func TestRegister_Rejects(t *testing.T) {
	s, _ := newScheduler(t)
	noop := func(ctx context.Context, runID string) error { return nil }

	assert.Error(t, s.Register("sweep", "every day", noop))
	require.NoError(t, s.Register("sweep", "0 2 * * *", noop))
	assert.Error(t, s.Register("sweep", "0 3 * * *", noop))
}

func TestRunNow_HoldsAndReleasesLock(t *testing.T) {
	s, mr := newScheduler(t)

	var gotRunID string
	require.NoError(t, s.Register("status-sweep", "0 2 * * *", func(ctx context.Context, runID string) error {
		gotRunID = runID
		assert.True(t, mr.Exists("lock:job:status-sweep"))
		return nil
	}))

	runID, err := s.RunNow(context.Background(), "status-sweep")
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
	assert.Equal(t, runID, gotRunID)
	assert.False(t, mr.Exists("lock:job:status-sweep"))
}

func TestRunNow_SkipsWhenLockHeld(t *testing.T) {
	s, mr := newScheduler(t)

	ran := false
	require.NoError(t, s.Register("status-sweep", "0 2 * * *", func(ctx context.Context, runID string) error {
		ran = true
		return nil
	}))
	require.NoError(t, mr.Set("lock:job:status-sweep", "other-instance"))

	_, err := s.RunNow(context.Background(), "status-sweep")
	assert.ErrorIs(t, err, redis.ErrLockHeld)
	assert.False(t, ran)

	// the foreign lock is untouched
	value, err := mr.Get("lock:job:status-sweep")
	require.NoError(t, err)
	assert.Equal(t, "other-instance", value)
}

func TestRunNow_PropagatesJobError(t *testing.T) {
	s, mr := newScheduler(t)
	boom := errors.New("database gone")
	require.NoError(t, s.Register("document-purge", "30 2 * * *", func(ctx context.Context, runID string) error {
		return boom
	}))

	_, err := s.RunNow(context.Background(), "document-purge")
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("lock:job:document-purge"))

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownJob)
}

func TestRunNow_WithoutRedis(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s := New(redis.NewCache(nil), time.Minute, nil, logger)

	ran := false
	require.NoError(t, s.Register("status-sweep", "0 2 * * *", func(ctx context.Context, runID string) error {
		ran = true
		return nil
	}))
	_, err := s.RunNow(context.Background(), "status-sweep")
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestStart_ComputesNextRun(t *testing.T) {
	s, _ := newScheduler(t)
	require.NoError(t, s.Register("status-sweep", "0 2 * * *", func(ctx context.Context, runID string) error { return nil }))

	s.Start(context.Background())
	defer s.Stop()

	next := s.NextRuns()["status-sweep"]
	require.False(t, next.IsZero())
	assert.Equal(t, 2, next.UTC().Hour())
	assert.Equal(t, 0, next.UTC().Minute())
	assert.True(t, next.After(time.Now()))
}

func TestTrigger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s, mr := newScheduler(t)
	require.NoError(t, s.Register("status-sweep", "0 2 * * *", func(ctx context.Context, runID string) error { return nil }))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	router := gin.New()
	router.Use(middleware.ErrorHandler(logger))
	handler := NewHandler(s)
	router.POST("/internal/sweep", handler.Trigger("status-sweep"))
	router.POST("/internal/unknown", handler.Trigger("unknown"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal/sweep", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"job":"status-sweep"`)

	require.NoError(t, mr.Set("lock:job:status-sweep", "other-instance"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal/sweep", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
