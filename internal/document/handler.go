package document

import (
	"net/http"
	"strconv"
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
	var form CreateDocumentRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	doc, err := h.service.CreateDocument(c.Request.Context(), middleware.TenantID(c), form)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) List(c *gin.Context) {
	var archived *bool
	if raw := c.Query("archive"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			c.Error(errors.BadRequest("Invalid archive filter", err))
			return
		}
		archived = &value
	}

	docs, err := h.service.ListDocuments(c.Request.Context(), middleware.TenantID(c), archived)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": docs})
}

func (h *Handler) Show(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	doc, err := h.service.GetDocument(c.Request.Context(), middleware.TenantID(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var patch DocumentPatch
	if err := utils.BindStrictJSON(c, &patch); err != nil {
		c.Error(err)
		return
	}

	doc, err := h.service.UpdateDocument(c.Request.Context(), middleware.TenantID(c), id, patch)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Purge is an internal route used by the cron service
func (h *Handler) Purge(c *gin.Context) {
	purged, err := h.service.PurgeOrphanedArchived(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"purged": purged})
}
