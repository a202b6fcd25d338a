package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/pkg/apperror"
	"yamdb/pkg/response"
	"yamdb/pkg/validator"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type UserHandler struct {
	userService service.UserService
	pageSize    int
}

func NewUserHandler(userService service.UserService, pageSize int) *UserHandler {
	return &UserHandler{userService: userService, pageSize: pageSize}
}

// RegisterMeRoutes registers the self-service profile endpoint.
func (h *UserHandler) RegisterMeRoutes(router *gin.RouterGroup) {
	router.GET("", h.Me)
	router.PATCH("", h.UpdateMe)
}

// RegisterRoutes registers the admin user management endpoints.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.POST("", h.Create)
	router.GET("/:username", h.Get)
	router.PATCH("/:username", h.Update)
	router.DELETE("/:username", h.Delete)
}

// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.userService.Me(ctx, middleware.ActorFrom(c))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe patches the caller's own profile. A body that mentions role is
// rejected as a whole, whatever else it contains.
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil {
		response.ResponseError(c, apperror.ValidationFields(validator.FormatValidationError(err)))
		return
	}
	if _, ok := raw["role"]; ok {
		response.ResponseError(c, apperror.Validation("role", "you cannot change your own role"))
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		response.ResponseError(c, apperror.ValidationFields(validator.FormatValidationError(err)))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.userService.UpdateMe(ctx, middleware.ActorFrom(c), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GET /api/v1/users?search=
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := pagination(c, h.pageSize)

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	users, err := h.userService.List(ctx, c.Query("search"), page, pageSize)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.userService.Create(ctx, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GET /api/v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.userService.Get(ctx, c.Param("username"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// PATCH /api/v1/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	user, err := h.userService.Update(ctx, c.Param("username"), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DELETE /api/v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.userService.Delete(ctx, c.Param("username")); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
