package task

import (
	"net/http"
	"wartungsmanager/internal/errors"
	"wartungsmanager/internal/middleware"
	"wartungsmanager/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	maintenanceID, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form CreateTaskRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), middleware.TenantID(c), maintenanceID, form)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *Handler) List(c *gin.Context) {
	maintenanceID, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	tasks, err := h.service.ListTasks(c.Request.Context(), middleware.TenantID(c), maintenanceID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

func (h *Handler) Update(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var patch TaskPatch
	if err := utils.BindStrictJSON(c, &patch); err != nil {
		c.Error(err)
		return
	}

	task, err := h.service.UpdateTask(c.Request.Context(), middleware.TenantID(c), id, patch)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *Handler) Move(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	task, err := h.service.MoveTask(c.Request.Context(), middleware.TenantID(c), id, *req.Position)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
