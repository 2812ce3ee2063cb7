package middleware

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	appcache "github.com/yeisme/ingestvault/pkg/cache"
)

const (
	// DefaultMaxBodyBytes 超过该大小的响应体不进缓存.
	DefaultMaxBodyBytes = 1 << 20

	defaultCacheTTL = 30 * time.Second
)

// CacheConfig 列表响应缓存配置.
type CacheConfig struct {
	Cache *appcache.Cache // 必须: 注入的 KV 缓存实例
	TTL   time.Duration

	BypassHeader string // 请求带该 header(任意值) 时跳过缓存
	MaxBodyBytes int    // 0 表示不限制
}

// DefaultCacheConfig 返回一份默认配置.
func DefaultCacheConfig(c *appcache.Cache) CacheConfig {
	return CacheConfig{
		Cache:        c,
		TTL:          defaultCacheTTL,
		BypassHeader: "X-Cache-Bypass",
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// cachedResponse KV 中的序列化存储结构.
type cachedResponse struct {
	Status   int               `json:"s"`
	Header   map[string]string `json:"h,omitempty"`
	Body     []byte            `json:"b,omitempty"`
	ETag     string            `json:"e,omitempty"`
	StoredAt int64             `json:"t"` // unix nano, 用于 Age 头
}

// CacheMiddleware 缓存幂等读请求的响应:
//   - 只处理 GET/HEAD 且状态码 200 的响应
//   - 缓存键为 方法+路由+排序后 query 的 xxhash, 保证同一过滤组合命中同一条目
//   - 命中附带 ETag / Age / X-Cache: HIT, 支持 If-None-Match 304
//   - 写缓存异步进行, 缓存失败不影响主流程
//
// 写操作不经过该中间件, 详情路由也不要挂载它, 否则更新后的读取会命中旧值.
func CacheMiddleware(cfg CacheConfig) gin.HandlerFunc {
	if cfg.Cache == nil {
		panic("CacheMiddleware: Cache cannot be nil")
	}

	if cfg.TTL <= 0 {
		cfg.TTL = defaultCacheTTL
	}

	return func(c *gin.Context) {
		if method := c.Request.Method; method != http.MethodGet && method != http.MethodHead {
			c.Next()
			return
		}

		if cfg.BypassHeader != "" && c.GetHeader(cfg.BypassHeader) != "" {
			c.Next()
			return
		}

		key := cacheKey(c)
		if serveFromCache(c, cfg.Cache, key) {
			return
		}

		bw := &bodyCaptureWriter{ResponseWriter: c.Writer, max: cfg.MaxBodyBytes}
		c.Writer = bw
		c.Next()
		storeResponse(c, cfg, key, bw)
	}
}

// cacheKey 生成缓存键: "GET:/api/v1/processes?state=running&page=0" 的 xxhash.
// query 按 key 排序, 保证参数顺序不同的同一查询命中同一条目.
func cacheKey(c *gin.Context) string {
	var b strings.Builder

	b.WriteString(c.Request.Method)
	b.WriteByte(':')

	path := c.FullPath()
	if path == "" { // 未匹配路由
		path = c.Request.URL.Path
	}

	b.WriteString(path)

	if q := c.Request.URL.Query(); len(q) > 0 {
		keys := make([]string, 0, len(q))
		for k := range q {
			keys = append(keys, k)
		}

		sort.Strings(keys)
		b.WriteByte('?')

		for i, k := range keys {
			if i > 0 {
				b.WriteByte('&')
			}

			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(strings.Join(q[k], ","))
		}
	}

	return fmt.Sprintf("rc:%x", xxhash.Sum64String(b.String()))
}

// serveFromCache 命中则直接写出缓存响应并返回 true.
func serveFromCache(c *gin.Context, cache *appcache.Cache, key string) bool {
	entry, err := appcache.Get[cachedResponse](c.Request.Context(), cache, key)
	if err != nil {
		return false
	}

	h := c.Writer.Header()
	for k, v := range entry.Header {
		h.Set(k, v)
	}

	if entry.ETag != "" {
		h.Set("ETag", entry.ETag)
	}

	h.Set("Age", fmt.Sprintf("%.0f", time.Since(time.Unix(0, entry.StoredAt)).Seconds()))
	h.Set("X-Cache", "HIT")

	if entry.ETag != "" && c.GetHeader("If-None-Match") == entry.ETag {
		c.Status(http.StatusNotModified)
		c.Abort()

		return true
	}

	c.Status(entry.Status)

	if c.Request.Method != http.MethodHead {
		_, _ = c.Writer.Write(entry.Body)
	}

	c.Abort()

	return true
}

// storeResponse 把本次 200 响应异步写入缓存.
func storeResponse(c *gin.Context, cfg CacheConfig, key string, bw *bodyCaptureWriter) {
	if c.Writer.Status() != http.StatusOK || bw.truncated {
		return
	}

	body := bw.buf.Bytes()
	hdr := make(map[string]string)

	for k, v := range c.Writer.Header() {
		if len(v) > 0 {
			hdr[k] = v[0]
		}
	}

	etag := c.Writer.Header().Get("ETag")
	if etag == "" {
		etag = fmt.Sprintf("%q", fmt.Sprintf("%x", xxhash.Sum64(body)))
		c.Writer.Header().Set("ETag", etag)
		hdr["ETag"] = etag
	}

	entry := cachedResponse{
		Status:   c.Writer.Status(),
		Header:   hdr,
		Body:     body,
		ETag:     etag,
		StoredAt: time.Now().UnixNano(),
	}

	go func(ctx context.Context, k string, e cachedResponse) {
		_ = appcache.Set(ctx, cfg.Cache, k, e, cfg.TTL)
	}(c.Request.Context(), key, entry)

	c.Writer.Header().Set("X-Cache", "MISS")
}

// bodyCaptureWriter 捕获响应体用于缓存, 超过 max 即放弃捕获.
type bodyCaptureWriter struct {
	gin.ResponseWriter

	buf       bytes.Buffer
	max       int
	truncated bool
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	if w.truncated {
		return w.ResponseWriter.Write(b)
	}

	if w.max > 0 && w.buf.Len()+len(b) > w.max {
		w.truncated = true
		w.buf.Reset()

		return w.ResponseWriter.Write(b)
	}

	w.buf.Write(b)

	return w.ResponseWriter.Write(b)
}
