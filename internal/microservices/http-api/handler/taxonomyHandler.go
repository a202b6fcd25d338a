package handler

import (
	"context"
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/pkg/response"

	"github.com/gin-gonic/gin"
)

// TaxonomyHandler serves /genres or /categories, depending on the service.
type TaxonomyHandler struct {
	svc      service.TaxonomyService
	pageSize int
}

func NewTaxonomyHandler(svc service.TaxonomyService, pageSize int) *TaxonomyHandler {
	return &TaxonomyHandler{svc: svc, pageSize: pageSize}
}

func (h *TaxonomyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.DELETE("/:slug", h.Delete)
}

func (h *TaxonomyHandler) List(c *gin.Context) {
	page, pageSize := pagination(c, h.pageSize)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.svc.List(ctx, c.Query("search"), page, pageSize)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TaxonomyHandler) Create(c *gin.Context) {
	var in dto.TaxonomyRequest
	if !bindJSON(c, &in) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	out, err := h.svc.Create(ctx, in)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *TaxonomyHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("slug")); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
