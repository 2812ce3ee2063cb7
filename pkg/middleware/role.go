package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/ingestvault/pkg/configs"
)

// Role 表示请求方的角色（使用 iota 实现的枚举，数值越大权限越高）。
type Role int

const (
	RoleUser Role = iota + 1
	RoleMember
	RoleEnterprise
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleUser:       "user",
	RoleMember:     "member",
	RoleEnterprise: "enterprise",
	RoleAdmin:      "admin",
}

// String 返回角色的字符串表示。
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}

	return "user"
}

type roleKey struct{}

// ParseRole 从字符串解析角色，未知值降级为 user。
func ParseRole(s string) Role {
	want := strings.ToLower(strings.TrimSpace(s))
	for r, name := range roleNames {
		if name == want {
			return r
		}
	}

	return RoleUser
}

// RoleMiddleware 解析 X-Role 头并同时注入 gin.Context 和 request.Context，
// 缺省角色为 user。service 层只看 request.Context，handler 层用 GetRole.
func RoleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		r := ParseRole(c.GetHeader("X-Role"))
		c.Set("role", r)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), roleKey{}, r))
		c.Next()
	}
}

// GetRole 从 gin.Context 获取当前请求角色。
func GetRole(c *gin.Context) Role {
	if v, ok := c.Get("role"); ok {
		if r, ok := v.(Role); ok {
			return r
		}
	}

	return RoleFromContext(c.Request.Context())
}

// RoleFromContext 从普通 context 获取请求角色，供 service 层在 HTTP 之外使用。
// 未经 RoleMiddleware 注入时返回缺省角色 user。
func RoleFromContext(ctx context.Context) Role {
	if v := ctx.Value(roleKey{}); v != nil {
		if r, ok := v.(Role); ok {
			return r
		}
	}

	return RoleUser
}

// HasWriteAccess 是写操作的访问门禁：请求角色不低于 auth.write_role 配置的最小角色。
// 读操作不经过此判断。
func HasWriteAccess(ctx context.Context) bool {
	minRole := ParseRole(configs.GetConfig().Auth.WriteRole)

	return RoleFromContext(ctx) >= minRole
}

// RequireMinRole 要求最小角色，不满足则返回 403。
func RequireMinRole(minRole Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := GetRole(c)
		if r < minRole { // 使用枚举的自然顺序进行最小角色判断
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: insufficient role"})
			return
		}

		c.Next()
	}
}
