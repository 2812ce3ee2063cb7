package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yeisme/ingestvault/pkg/configs"
)

// RateLimitMiddleware 基于 token bucket 的请求限流.
// key 维度由配置决定: global(单一桶) / ip / header:<name>.
func RateLimitMiddleware(cfg configs.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RPS <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	keyMode := strings.ToLower(strings.TrimSpace(cfg.Key))

	if keyMode == "" || keyMode == "global" {
		limiter := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)

		return func(c *gin.Context) {
			if !limiter.Allow() {
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
				return
			}

			c.Next()
		}
	}

	pool := newLimiterPool(cfg.RPS, cfg.Burst)
	go pool.janitor()

	return func(c *gin.Context) {
		key := limiterKey(c, keyMode)

		if !pool.get(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}

// limiterKey 按配置的维度提取限流键, 提取不到时退回客户端 IP.
func limiterKey(c *gin.Context, keyMode string) string {
	if name, ok := strings.CutPrefix(keyMode, "header:"); ok {
		if v := c.GetHeader(name); v != "" {
			return v
		}
	}

	if ip := clientIP(c); ip != "" {
		return ip
	}

	return "unknown"
}

// limiterPool 按 key 维护独立的 limiter.
type limiterPool struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
	burst    int
}

func newLimiterPool(rps float64, burst int) *limiterPool {
	return &limiterPool{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if l, ok := p.limiters[key]; ok {
		return l
	}

	l := rate.NewLimiter(rate.Limit(p.rps), p.burst)
	p.limiters[key] = l

	return l
}

// janitor 防止 limiter map 无界增长. 不记录各 key 的最近访问时间,
// 超过阈值直接整表重建, 代价是偶尔给所有客户端一个新桶.
func (p *limiterPool) janitor() {
	const (
		interval   = 10 * time.Minute
		maxEntries = 10000
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		p.mu.Lock()
		if len(p.limiters) > maxEntries {
			p.limiters = make(map[string]*rate.Limiter)
		}
		p.mu.Unlock()
	}
}

func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}

	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}

	return c.Request.RemoteAddr
}
