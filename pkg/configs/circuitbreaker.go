package configs

import "github.com/spf13/viper"

// 熔断器默认值，保护对象存储等易抖动的下游.
const (
	DefaultCBEnabled           = false
	DefaultCBFailureRate       = 0.5 // 窗口内失败比例阈值 [0,1]
	DefaultCBMinRequests       = 20  // 进入统计的最小请求数
	DefaultCBIntervalSeconds   = 60  // 滑动窗口统计周期
	DefaultCBTimeoutSeconds    = 30  // 打开状态持续时间，到期自动半开
	DefaultCBMaxRequestsInHalf = 5   // 半开状态允许的并发请求数
)

// CircuitBreakerConfig 熔断器配置.
type CircuitBreakerConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	FailureRate       float64 `mapstructure:"failure_rate"`
	MinRequests       uint32  `mapstructure:"min_requests"`
	IntervalSeconds   int     `mapstructure:"interval_seconds"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	MaxRequestsInHalf uint32  `mapstructure:"max_requests_in_half"`
}

func (c *CircuitBreakerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("circuit_breaker.enabled", DefaultCBEnabled)
	v.SetDefault("circuit_breaker.failure_rate", DefaultCBFailureRate)
	v.SetDefault("circuit_breaker.min_requests", DefaultCBMinRequests)
	v.SetDefault("circuit_breaker.interval_seconds", DefaultCBIntervalSeconds)
	v.SetDefault("circuit_breaker.timeout_seconds", DefaultCBTimeoutSeconds)
	v.SetDefault("circuit_breaker.max_requests_in_half", DefaultCBMaxRequestsInHalf)
}
