package mq

import (
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/yeisme/ingestvault/pkg/configs"
)

const (
	natsDrainTimeout   = 30 * time.Second
	natsFlusherTimeout = 10 * time.Second
)

// newNATSPubSub 创建 NATS Publisher 与 Subscriber.
// JetStream 打开时消息持久化, AutoProvision 会自动建流.
func newNATSPubSub(cfg *configs.MQNATSConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	opts := natsOptions(cfg)
	jsCfg := jetStreamConfig(cfg, logger)
	marshaler := &nats.JSONMarshaler{}
	url := natsURL(cfg)

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		JetStream:   jsCfg,
		Marshaler:   marshaler,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.LoadBalance {
		logger.Info("NATS queue-group load balancing enabled", watermill.LogFields{
			"prefix": cfg.SubjectPrefix,
		})
	}

	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:         url,
		NatsOptions: opts,
		JetStream:   jsCfg,
		Unmarshaler: marshaler,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	return pub, sub, nil
}

// natsOptions 连接选项: 重连、心跳与认证.
func natsOptions(cfg *configs.MQNATSConfig) []nc.Option {
	opts := []nc.Option{
		nc.Name(cfg.ClientID),
		nc.MaxReconnects(cfg.MaxReconnects),
		nc.ReconnectWait(time.Duration(cfg.ReconnectWait) * time.Second),
		nc.PingInterval(time.Duration(cfg.PingInterval) * time.Second),
		nc.ReconnectBufSize(cfg.BufferSize),
		nc.DrainTimeout(natsDrainTimeout),
		nc.FlusherTimeout(natsFlusherTimeout),
		nc.RetryOnFailedConnect(true),
	}

	switch {
	case cfg.JWT != "":
		opts = append(opts, nc.UserJWTAndSeed(cfg.JWT, cfg.NKey))
	case cfg.NKey != "":
		opts = append(opts, nc.Nkey(cfg.NKey, nil))
	case cfg.User != "":
		opts = append(opts, nc.UserInfo(cfg.User, cfg.Password))
	}

	return opts
}

func jetStreamConfig(cfg *configs.MQNATSConfig, logger watermill.LoggerAdapter) nats.JetStreamConfig {
	jsCfg := nats.JetStreamConfig{Disabled: !cfg.JetStreamEnabled}
	if !cfg.JetStreamEnabled {
		return jsCfg
	}

	jsCfg.AutoProvision = cfg.JetStreamAutoProvision
	jsCfg.TrackMsgId = cfg.JetStreamTrackMsgID
	jsCfg.AckAsync = cfg.JetStreamAckAsync
	jsCfg.DurablePrefix = cfg.JetStreamDurablePrefix

	logger.Info("JetStream enabled", watermill.LogFields{
		"auto_provision": cfg.JetStreamAutoProvision,
		"track_msg_id":   cfg.JetStreamTrackMsgID,
		"ack_async":      cfg.JetStreamAckAsync,
		"durable_prefix": cfg.JetStreamDurablePrefix,
		"stream_name":    cfg.StreamName,
	})

	return jsCfg
}

func natsURL(cfg *configs.MQNATSConfig) string {
	if len(cfg.ClusterURLs) > 0 {
		return strings.Join(cfg.ClusterURLs, ",")
	}

	return cfg.URL
}
