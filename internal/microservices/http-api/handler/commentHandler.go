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

type CommentHandler struct {
	commentService service.CommentService
	pageSize       int
}

func NewCommentHandler(commentService service.CommentService, pageSize int) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		pageSize:       pageSize,
	}
}

// RegisterRoutes expects a group mounted at
// /titles/:title_id/reviews/:review_id/comments.
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.POST("", h.Create)
	router.GET("/:comment_id", h.Get)
	router.PATCH("/:comment_id", h.Update)
	router.DELETE("/:comment_id", h.Delete)
}

// path resolves the title and review ids every comment route carries.
func (h *CommentHandler) path(c *gin.Context) (titleID, reviewID int64, ok bool) {
	if titleID, ok = idParam(c, "title_id", "title"); !ok {
		return 0, 0, false
	}
	if reviewID, ok = idParam(c, "review_id", "review"); !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

// GET .../comments
func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := h.path(c)
	if !ok {
		return
	}
	page, pageSize := pagination(c, h.pageSize)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.commentService.List(ctx, titleID, reviewID, page, pageSize)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET .../comments/:comment_id
func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := h.path(c)
	if !ok {
		return
	}
	commentID, ok := idParam(c, "comment_id", "comment")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	comment, err := h.commentService.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// POST .../comments
func (h *CommentHandler) Create(c *gin.Context) {
	titleID, reviewID, ok := h.path(c)
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	comment, err := h.commentService.Create(ctx, middleware.ActorFrom(c), titleID, reviewID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// PATCH .../comments/:comment_id
func (h *CommentHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := h.path(c)
	if !ok {
		return
	}
	commentID, ok := idParam(c, "comment_id", "comment")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	comment, err := h.commentService.Update(ctx, middleware.ActorFrom(c), titleID, reviewID, commentID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DELETE .../comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := h.path(c)
	if !ok {
		return
	}
	commentID, ok := idParam(c, "comment_id", "comment")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.commentService.Delete(ctx, middleware.ActorFrom(c), titleID, reviewID, commentID); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
