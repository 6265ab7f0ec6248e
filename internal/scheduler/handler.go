package scheduler

import (
	defError "errors"
	"net/http"
	"wartungsmanager/internal/errors"
	"wartungsmanager/redis"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	scheduler *Scheduler
}

func NewHandler(scheduler *Scheduler) *Handler {
	return &Handler{scheduler: scheduler}
}

// Trigger runs the named job for the internal routes.
func (h *Handler) Trigger(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		runID, err := h.scheduler.RunNow(c.Request.Context(), name)
		switch {
		case defError.Is(err, ErrUnknownJob):
			c.Error(errors.NotFound("Job not found", err))
			return
		case defError.Is(err, redis.ErrLockHeld):
			c.Error(errors.Conflict("Job is already running", err))
			return
		case err != nil:
			c.Error(errors.Internal(err))
			return
		}

		c.JSON(http.StatusOK, gin.H{"job": name, "runId": runID})
	}
}
