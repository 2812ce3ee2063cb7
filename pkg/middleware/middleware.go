// Package middleware 提供 gin 中间件：CORS、访问日志、追踪、指标、认证与角色门禁、
// 限流、熔断、响应缓存以及存储/调度器的 context 注入.
package middleware
