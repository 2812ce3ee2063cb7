// Package mq 基于 Watermill 提供统一的消息发布/订阅入口.
//
// 支持的后端:
//   - NATS (可选 JetStream 持久化)
//   - Redis Pub/Sub
//
// 摄取流程的生命周期事件经由 Client 发布, 见 pkg/queue.
package mq

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/ingestvault/pkg/configs"
	nlog "github.com/yeisme/ingestvault/pkg/log"
)

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	router     *message.Router
	closeFunc  func() // 关闭 metrics 服务器
}

// SupportedMQTypes 返回全部可用的后端类型.
func SupportedMQTypes() []configs.MQType {
	return []configs.MQType{configs.MQTypeNATS, configs.MQTypeRedis}
}

// Publisher 返回底层 watermill Publisher, 供 queue 包的业务封装使用.
func (c *Client) Publisher() message.Publisher {
	if c == nil {
		return nil
	}

	return c.publisher
}

// Publish 发布一批消息到指定主题.
func (c *Client) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return fmt.Errorf("mq publisher not initialized")
	}

	for _, m := range msgs {
		if err := c.publisher.Publish(topic, m); err != nil {
			return err
		}
	}

	return nil
}

// Subscribe 订阅主题, 返回消息通道.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, fmt.Errorf("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Close 关闭发布者、订阅者与 router.
func (c *Client) Close() error {
	var err error

	if c.publisher != nil {
		if e := c.publisher.Close(); e != nil {
			err = e
		}
	}

	if c.subscriber != nil {
		if e := c.subscriber.Close(); e != nil {
			err = e
		}
	}

	if c.router != nil {
		if e := c.router.Close(); e != nil {
			err = e
		}
	}

	if c.closeFunc != nil {
		c.closeFunc()
	}

	return err
}

var (
	mqOnce sync.Once
	mqInst *Client
	mqErr  error
)

// New 初始化消息队列连接, 进程内单例.
func New(ctx context.Context) (*Client, error) {
	mqOnce.Do(func() {
		cfg := configs.GetConfig().MQ
		logger := &zerologAdapter{l: nlog.Logger()}

		var (
			pub message.Publisher
			sub message.Subscriber
			err error
		)

		switch cfg.Type {
		case configs.MQTypeNATS:
			pub, sub, err = newNATSPubSub(&cfg.NATS, logger)
		case configs.MQTypeRedis:
			pub, sub, err = newRedisPubSub(ctx, &cfg.Redis)
		default:
			mqErr = fmt.Errorf("unsupported mq type: %s", cfg.Type)
			return
		}

		if err != nil {
			mqErr = fmt.Errorf("init mq (%s): %w", cfg.Type, err)
			return
		}

		var (
			router    *message.Router
			closeFunc func()
		)

		if metricsCfg := configs.GetConfig().Metrics; metricsCfg.Enabled {
			registry, closeMetricsServer := metrics.CreateRegistryAndServeHTTP(metricsCfg.Endpoint)
			closeFunc = closeMetricsServer

			router, err = message.NewRouter(message.RouterConfig{}, logger)
			if err != nil {
				mqErr = fmt.Errorf("create router: %w", err)
				return
			}

			go func() {
				if runErr := router.Run(ctx); runErr != nil {
					nlog.Logger().Error().Err(runErr).Msg("MQ router stopped")
				}
			}()

			builder := metrics.NewPrometheusMetricsBuilder(registry, "", "")
			builder.AddPrometheusRouterMetrics(router)

			pub, err = builder.DecoratePublisher(pub)
			if err != nil {
				mqErr = fmt.Errorf("decorate publisher with metrics: %w", err)
				return
			}

			sub, err = builder.DecorateSubscriber(sub)
			if err != nil {
				mqErr = fmt.Errorf("decorate subscriber with metrics: %w", err)
				return
			}

			nlog.Logger().Info().Str("endpoint", metricsCfg.Endpoint).Msg("MQ metrics enabled")
		}

		mqInst = &Client{publisher: pub, subscriber: sub, router: router, closeFunc: closeFunc}

		nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("MQ client initialized")
	})

	return mqInst, mqErr
}
