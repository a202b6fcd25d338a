package handler

import (
	"strconv"
	"time"

	"yamdb/pkg/apperror"
	"yamdb/pkg/response"
	"yamdb/pkg/validator"

	"github.com/gin-gonic/gin"
)

const (
	requestTimeout = 5 * time.Second
	maxPageSize    = 100
)

// bindJSON binds the body into obj and writes a 400 with per-field reasons
// when that fails.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		response.ResponseError(c, apperror.ValidationFields(validator.FormatValidationError(err)))
		return false
	}
	return true
}

// idParam parses a numeric path parameter. Anything else cannot name an
// existing object, so it is a 404.
func idParam(c *gin.Context, name, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		response.ResponseError(c, apperror.NotFound(what))
		return 0, false
	}
	return id, true
}

// pagination reads ?page and ?page_size, falling back to defaultSize.
func pagination(c *gin.Context, defaultSize int) (page, pageSize int) {
	page, pageSize = 1, defaultSize
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.Query("page_size")); err == nil && ps > 0 {
		pageSize = ps
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if pageSize < 1 {
		pageSize = 1
	}
	return page, pageSize
}
