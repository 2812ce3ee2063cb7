package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/ingestvault/pkg/configs"
)

// ContextKeyUserEmail 认证通过后写入 gin context 的用户标识.
const ContextKeyUserEmail = "auth_email"

// AuthMiddleware 校验反向代理 (oauth2-proxy) 注入的身份请求头.
//   - X-Auth-Request-Email / X-Forwarded-Email 二者取其一
//   - 配置的路径前缀 (如 /metrics, /api/v1/health) 跳过校验
//   - 开发模式可用 ?user= 兜底 (configs.auth.dev_allow_query)
func AuthMiddleware(conf configs.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !conf.Enabled || isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		email := strings.TrimSpace(c.GetHeader("X-Auth-Request-Email"))
		if email == "" {
			email = strings.TrimSpace(c.GetHeader("X-Forwarded-Email"))
		}

		if email == "" && conf.DevAllowQuery {
			email = strings.TrimSpace(c.Query("user"))
		}

		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ContextKeyUserEmail, email)
		c.Next()
	}
}

func isSkippedPath(path string, skips []string) bool {
	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}
