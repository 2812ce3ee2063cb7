package configs

import (
	"github.com/spf13/viper"
)

// MQType 消息队列类型.
type MQType string

const (
	MQTypeNATS  MQType = "nats"
	MQTypeRedis MQType = "redis"
)

// NATS 连接默认值.
const (
	DefaultNATSURL           = "localhost:4222"
	DefaultNATSClientID      = "ingestvault"
	DefaultNATSMaxReconnects = 5     // 最大重连次数
	DefaultNATSReconnectWait = 5     // 重连等待（秒）
	DefaultNATSPingInterval  = 20    // 心跳间隔（秒）
	DefaultNATSBufferSize    = 32768 // 断线期间的发送缓冲（字节）
)

// MQConfig 消息队列配置.
type MQConfig struct {
	Type  MQType        `mapstructure:"type"  rule:"oneof=nats redis"`
	NATS  MQNATSConfig  `mapstructure:"nats"`
	Redis MQRedisConfig `mapstructure:"redis"`
}

// MQNATSConfig NATS 后端配置，含连接、认证与 JetStream 设置.
// 认证三选一：JWT+NKey 种子、裸 NKey、用户名密码.
type MQNATSConfig struct {
	URL           string   `mapstructure:"url"            rule:"hostname_port"`
	ClusterURLs   []string `mapstructure:"cluster_urls"`
	ClientID      string   `mapstructure:"client_id"`
	User          string   `mapstructure:"user"`
	Password      string   `mapstructure:"password"`
	JWT           string   `mapstructure:"jwt"`
	NKey          string   `mapstructure:"nkey"`
	MaxReconnects int      `mapstructure:"max_reconnects" rule:"min=0,max=100"`
	ReconnectWait int      `mapstructure:"reconnect_wait" rule:"min=1,max=300"`
	PingInterval  int      `mapstructure:"ping_interval"  rule:"min=1,max=300"`
	BufferSize    int      `mapstructure:"buffer_size"    rule:"min=1024,max=1048576"`

	SubjectPrefix string `mapstructure:"subject_prefix"`
	LoadBalance   bool   `mapstructure:"load_balance"`

	JetStreamEnabled       bool   `mapstructure:"jetstream_enabled"`
	JetStreamAutoProvision bool   `mapstructure:"jetstream_auto_provision"`
	JetStreamTrackMsgID    bool   `mapstructure:"jetstream_track_msg_id"`
	JetStreamAckAsync      bool   `mapstructure:"jetstream_ack_async"`
	JetStreamDurablePrefix string `mapstructure:"jetstream_durable_prefix"`
	StreamName             string `mapstructure:"stream_name"`
}

// MQRedisConfig Redis Pub/Sub 后端配置.
type MQRedisConfig struct {
	Addr     string `mapstructure:"addr"     rule:"hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"       rule:"min=0,max=15"`
}

func (c *MQConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("mq.type", MQTypeNATS)

	v.SetDefault("mq.nats.url", DefaultNATSURL)
	v.SetDefault("mq.nats.cluster_urls", []string{})
	v.SetDefault("mq.nats.client_id", DefaultNATSClientID)
	v.SetDefault("mq.nats.user", "")
	v.SetDefault("mq.nats.password", "")
	v.SetDefault("mq.nats.jwt", "")
	v.SetDefault("mq.nats.nkey", "")
	v.SetDefault("mq.nats.max_reconnects", DefaultNATSMaxReconnects)
	v.SetDefault("mq.nats.reconnect_wait", DefaultNATSReconnectWait)
	v.SetDefault("mq.nats.ping_interval", DefaultNATSPingInterval)
	v.SetDefault("mq.nats.buffer_size", DefaultNATSBufferSize)
	v.SetDefault("mq.nats.subject_prefix", "ingestvault.")
	v.SetDefault("mq.nats.load_balance", true)
	v.SetDefault("mq.nats.jetstream_enabled", true)
	v.SetDefault("mq.nats.jetstream_auto_provision", true)
	v.SetDefault("mq.nats.jetstream_track_msg_id", true)
	v.SetDefault("mq.nats.jetstream_ack_async", true)
	v.SetDefault("mq.nats.jetstream_durable_prefix", "ingestvault-durable")
	v.SetDefault("mq.nats.stream_name", "ingestvault-stream")

	v.SetDefault("mq.redis.addr", "localhost:6379")
	v.SetDefault("mq.redis.password", "")
	v.SetDefault("mq.redis.db", 0)
}
