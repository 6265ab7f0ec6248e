package utils

import (
	"encoding/json"
	"strconv"
	"wartungsmanager/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

func GetPaginationParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	return page, pageSize
}

// ParseID reads a uint64 path parameter
func ParseID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, errors.BadRequest("Invalid "+name, err)
	}
	return id, nil
}

// BindStrictJSON decodes the body rejecting unknown keys, then runs the binding validator
func BindStrictJSON(c *gin.Context, obj interface{}) error {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(obj); err != nil {
		return errors.NewValidationError(err)
	}
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return errors.NewValidationError(err)
	}
	return nil
}
