package comment

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

func (h *Handler) AttachToMaintenance(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form CreateCommentRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	comment, err := h.service.AttachToMaintenance(c.Request.Context(), middleware.TenantID(c), id, form)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) AttachToTask(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var form CreateCommentRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	comment, err := h.service.AttachToTask(c.Request.Context(), middleware.TenantID(c), id, form)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) ListForMaintenance(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	comments, err := h.service.ListForMaintenance(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": comments})
}

func (h *Handler) ListForTask(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	comments, err := h.service.ListForTask(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": comments})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
