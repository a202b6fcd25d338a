package handler

import (
	"context"
	"net/http"
	"strconv"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/pkg/apperror"
	"yamdb/pkg/response"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	svc      service.TitleService
	pageSize int
}

func NewTitleHandler(svc service.TitleService, pageSize int) *TitleHandler {
	return &TitleHandler{svc: svc, pageSize: pageSize}
}

func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:title_id", h.Get)
	rg.PUT("/:title_id", h.Replace)
	rg.PATCH("/:title_id", h.Patch)
	rg.DELETE("/:title_id", h.Delete)
}

// List supports ?category=, ?genre= (slugs), ?name= (contains) and ?year=.
func (h *TitleHandler) List(c *gin.Context) {
	filter := repository.TitleFilter{
		Category: c.Query("category"),
		Genre:    c.Query("genre"),
		Name:     c.Query("name"),
	}
	if y := c.Query("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			response.ResponseError(c, apperror.Validation("year", "enter a whole number"))
			return
		}
		filter.Year = &year
	}
	page, pageSize := pagination(c, h.pageSize)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.svc.List(ctx, filter, page, pageSize)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "title_id", "title")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	out, err := h.svc.Get(ctx, id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.TitleRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	out, err := h.svc.Create(ctx, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *TitleHandler) Replace(c *gin.Context) {
	id, ok := idParam(c, "title_id", "title")
	if !ok {
		return
	}
	var req dto.TitleRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	out, err := h.svc.Replace(ctx, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *TitleHandler) Patch(c *gin.Context) {
	id, ok := idParam(c, "title_id", "title")
	if !ok {
		return
	}
	var req dto.TitlePatchRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	out, err := h.svc.Patch(ctx, id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "title_id", "title")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
