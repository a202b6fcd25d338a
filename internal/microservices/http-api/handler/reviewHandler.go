package handler

import (
	"context"
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	svc      service.ReviewService
	pageSize int
}

func NewReviewHandler(svc service.ReviewService, pageSize int) *ReviewHandler {
	return &ReviewHandler{svc: svc, pageSize: pageSize}
}

// RegisterRoutes expects a group mounted at /titles/:title_id/reviews.
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:review_id", h.Get)
	rg.PATCH("/:review_id", h.Update)
	rg.DELETE("/:review_id", h.Delete)
}

func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := idParam(c, "title_id", "title")
	if !ok {
		return
	}
	page, pageSize := pagination(c, h.pageSize)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.svc.List(ctx, titleID, page, pageSize)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, ok := idParam(c, "title_id", "title")
	if !ok {
		return
	}
	reviewID, ok := idParam(c, "review_id", "review")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	out, err := h.svc.Get(ctx, titleID, reviewID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Create posts the caller's review. The author always comes from the token.
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := idParam(c, "title_id", "title")
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	out, err := h.svc.Create(ctx, middleware.ActorFrom(c), titleID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, ok := idParam(c, "title_id", "title")
	if !ok {
		return
	}
	reviewID, ok := idParam(c, "review_id", "review")
	if !ok {
		return
	}
	var req dto.UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	out, err := h.svc.Update(ctx, middleware.ActorFrom(c), titleID, reviewID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, ok := idParam(c, "title_id", "title")
	if !ok {
		return
	}
	reviewID, ok := idParam(c, "review_id", "review")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, middleware.ActorFrom(c), titleID, reviewID); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
