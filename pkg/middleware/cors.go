package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/ingestvault/pkg/configs"
)

// CORSMiddleware 跨域配置, 调试模式放开所有来源.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	conf := cors.DefaultConfig()
	conf.AllowOrigins = []string{"*"}
	conf.AllowHeaders = append(conf.AllowHeaders, "X-Role", "X-Cache-Bypass")

	if cfg.Debug {
		conf.AllowAllOrigins = true
		conf.AllowOrigins = nil
	}

	return cors.New(conf)
}
