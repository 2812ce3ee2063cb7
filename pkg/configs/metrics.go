package configs

import "github.com/spf13/viper"

// MetricsConfig Prometheus 指标配置.
// 主服务指标挂在业务端口的 /metrics；Endpoint 是消息队列指标的独立监听地址.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Endpoint       string `mapstructure:"endpoint"`
	RuntimeMetrics bool   `mapstructure:"runtime_metrics"` // Go runtime 与进程指标
	Pprof          bool   `mapstructure:"pprof"`           // 在 /debug/pprof 暴露剖析端点
}

func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.endpoint", ":9090")
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.pprof", false)
}
