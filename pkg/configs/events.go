package configs

import "github.com/spf13/viper"

// EventsConfig 控制领域事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled bool               `mapstructure:"enabled"` // 总开关
	Ingest  IngestEventsConfig `mapstructure:"ingest"`
}

// IngestEventsConfig 针对摄取流程领域的事件开关。
type IngestEventsConfig struct {
	Created    bool `mapstructure:"created"`
	Updated    bool `mapstructure:"updated"`
	TagAdded   bool `mapstructure:"tag_added"`
	TagRemoved bool `mapstructure:"tag_removed"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	// 摄取流程领域的事件：默认仅开启生命周期事件，标签变更默认关闭以减少噪声
	v.SetDefault("events.ingest.created", true)
	v.SetDefault("events.ingest.updated", true)
	v.SetDefault("events.ingest.tag_added", false)
	v.SetDefault("events.ingest.tag_removed", false)
}
