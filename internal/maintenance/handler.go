package maintenance

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
	var form CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	m, err := h.service.CreateMaintenance(c.Request.Context(), middleware.TenantID(c), form)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

func (h *Handler) List(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)

	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(errors.BadRequest("Invalid filter", err))
		return
	}

	result, err := h.service.ListMaintenances(c.Request.Context(), middleware.TenantID(c), filter, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Show(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	m, err := h.service.GetMaintenance(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, m)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var patch MaintenancePatch
	if err := utils.BindStrictJSON(c, &patch); err != nil {
		c.Error(err)
		return
	}

	m, err := h.service.UpdateMaintenance(c.Request.Context(), middleware.TenantID(c), id, patch)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, m)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.DeleteMaintenance(c.Request.Context(), middleware.TenantID(c), id); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Complete answers 200 in both cases; the completed flag tells whether a
// guard blocked the completion.
func (h *Handler) Complete(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.service.CompleteMaintenance(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Copy(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	m, err := h.service.CopyMaintenance(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, m)
}
