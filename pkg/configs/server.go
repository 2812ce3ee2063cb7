package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultHost         = "0.0.0.0" // 监听地址
	DefaultPort         = 8080      // 监听端口
	DefaultTimeout      = 30        // 请求超时，单位秒
	DefaultDebug        = false     // 调试模式（开放 swagger、放宽 CORS）
	DefaultReloadConfig = true      // 配置文件热重载
)

// ServerConfig HTTP 服务配置.
type ServerConfig struct {
	Host         string `mapstructure:"host"          rule:"ip"`
	Port         int    `mapstructure:"port"          rule:"min=1,max=65535"`
	Timeout      int    `mapstructure:"timeout"       rule:"min=1,max=300"`
	Debug        bool   `mapstructure:"debug"`
	ReloadConfig bool   `mapstructure:"reload_config"`
}

// GetTimeoutDuration 返回请求超时对应的 time.Duration.
func (s *ServerConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.timeout", DefaultTimeout)
	v.SetDefault("server.debug", DefaultDebug)
	v.SetDefault("server.reload_config", DefaultReloadConfig)
}
