package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Nischal456/my-attendance-system-sub000/internal/dto"
	"github.com/Nischal456/my-attendance-system-sub000/internal/service"
	"github.com/Nischal456/my-attendance-system-sub000/pkg/response"
)

// UserHandler 员工管理模块 HTTP 处理器（仅管理员路由）
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// CreateUser 创建员工
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.userSvc.Create(c.Request.Context(), &req, adminID)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.BadRequest(c, 11005, "邮箱已被占用")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// ListUsers 员工列表
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// DeleteUser 删除员工
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), c.Param("id"), adminID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 11004, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
