package mq

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"github.com/yeisme/ingestvault/pkg/configs"
)

// redis Pub/Sub 后端: 无持久化, 订阅者掉线期间的消息会丢失.
// 适合开发环境或对事件丢失不敏感的部署.

const redisChannelBuffer = 100

// newRedisPubSub 创建 Redis Publisher 与 Subscriber.
func newRedisPubSub(ctx context.Context, cfg *configs.MQRedisConfig) (message.Publisher, message.Subscriber, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}

	return &redisPublisher{client: rdb}, &redisSubscriber{client: rdb, closeCh: make(chan struct{})}, nil
}

type redisPublisher struct {
	client *redis.Client
}

func (p *redisPublisher) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		if err := p.client.Publish(context.Background(), topic, []byte(msg.Payload)).Err(); err != nil {
			return err
		}

		msg.Ack()
	}

	return nil
}

func (p *redisPublisher) Close() error {
	return p.client.Close()
}

type redisSubscriber struct {
	client *redis.Client

	mu      sync.Mutex
	pubsubs []*redis.PubSub
	closed  bool
	closeCh chan struct{}
}

func (s *redisSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, context.Canceled
	}

	pubsub := s.client.Subscribe(ctx, topic)
	s.pubsubs = append(s.pubsubs, pubsub)

	out := make(chan *message.Message, redisChannelBuffer)

	go func() {
		defer close(out)

		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}

			wmMsg := message.NewMessage(watermill.NewUUID(), []byte(msg.Payload))

			select {
			case out <- wmMsg:
			case <-s.closeCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (s *redisSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	close(s.closeCh)

	for _, pubsub := range s.pubsubs {
		_ = pubsub.Close()
	}

	return s.client.Close()
}
