package configs

import "github.com/spf13/viper"

const (
	DefaultLogLevel      = "info"
	DefaultLogEnableFile = true
	DefaultLogFilePath   = "logs/ingestvault.log"
	DefaultLogMaxSize    = 100  // 单文件上限（MB）
	DefaultLogMaxBackups = 7    // 轮转保留份数
	DefaultLogMaxAge     = 28   // 保留天数
	DefaultLogCompress   = true // 轮转后压缩
)

// LogConfig 日志配置，控制台输出始终开启，文件输出经 lumberjack 轮转.
type LogConfig struct {
	Level      string `mapstructure:"level"        rule:"oneof=trace debug info warn error fatal panic"`
	EnableFile bool   `mapstructure:"enable_file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func (l *LogConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.enable_file", DefaultLogEnableFile)
	v.SetDefault("log.file_path", DefaultLogFilePath)
	v.SetDefault("log.max_size_mb", DefaultLogMaxSize)
	v.SetDefault("log.max_backups", DefaultLogMaxBackups)
	v.SetDefault("log.max_age_days", DefaultLogMaxAge)
	v.SetDefault("log.compress", DefaultLogCompress)
}
