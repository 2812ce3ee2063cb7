// Package handle 提供 HTTP 请求处理器实现：绑定与校验请求、调用 service、
// 将业务错误映射为 HTTP 状态码.
package handle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yeisme/ingestvault/pkg/internal/service"
)

// parseProcessID 从路径参数解析摄取流程 id.
func parseProcessID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid process id"})

		return 0, false
	}

	return uint(id), true
}

// respondServiceError 将业务错误映射为 HTTP 响应：
// Forbidden→403、NotFound→404、校验失败→422、外部依赖失败→502，其余→500.
func respondServiceError(c *gin.Context, l zerolog.Logger, err error) {
	var (
		validationErr *service.ValidationError
		dependencyErr *service.DependencyError
	)

	switch {
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "ingest process not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationErr.Error(), "field": validationErr.Field})
	case errors.As(err, &dependencyErr):
		l.Error().Err(err).Msg("dependency failure")
		c.JSON(http.StatusBadGateway, gin.H{"error": dependencyErr.Error()})
	default:
		l.Error().Err(err).Msg("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
