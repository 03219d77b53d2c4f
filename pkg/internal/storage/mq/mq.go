// Package mq 基于 Watermill 的消息队列客户端，通过工厂按配置创建
// Publisher 与 Subscriber.
//
// 支持的类型：
//   - nats：watermill-nats，可选 JetStream 持久化
//   - redis：go-redis Pub/Sub，无持久化
//   - gochannel：进程内通道，用于本地开发与测试
//
//	client, err := mq.New(ctx, &cfg.MQ, cfg.Metrics.Enabled)
//	defer client.Close()
//
//	msg, _ := queue.NewWatermillMessage(queue.TopicFileIngested, payload)
//	err = client.Publish(ctx, queue.TopicFileIngested, msg)
package mq

import (
	"context"
	"fmt"
	"sort"
	"sync"

	watermill "github.com/ThreeDotsLabs/watermill"
	wmetrics "github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/exceleasy/pkg/configs"
	nlog "github.com/yeisme/exceleasy/pkg/log"
	"github.com/yeisme/exceleasy/pkg/metrics"
)

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[configs.MQType]Factory{}
)

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factoriesMu.Lock()
	factories[t] = f
	factoriesMu.Unlock()
}

// RegisteredTypes 已注册的类型，按名称排序.
func RegisteredTypes() []configs.MQType {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	out := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Client 封装 watermill Publisher 与 Subscriber.
type Client struct {
	Type configs.MQType

	publisher  message.Publisher
	subscriber message.Subscriber
}

// NewClient 直接由 Publisher 与 Subscriber 组装客户端.
func NewClient(t configs.MQType, pub message.Publisher, sub message.Subscriber) *Client {
	return &Client{Type: t, publisher: pub, subscriber: sub}
}

// New 按配置创建客户端；withMetrics 时用全局注册表装饰发布与订阅.
func New(ctx context.Context, cfg *configs.MQConfig, withMetrics bool) (*Client, error) {
	factoriesMu.RLock()
	factory, ok := factories[cfg.Type]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	logger := NewLogger(nlog.Logger())

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	if withMetrics && cfg.Common.EnableMetrics {
		builder := wmetrics.NewPrometheusMetricsBuilder(metrics.GetRegistry(), "exceleasy", "mq")

		if pub, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}
	}

	nlog.Logger().Info().Str("type", string(cfg.Type)).Msg("mq connected")

	return NewClient(cfg.Type, pub, sub), nil
}

// Publisher 底层发布者.
func (c *Client) Publisher() message.Publisher {
	return c.publisher
}

// Publish 发布消息.
func (c *Client) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return fmt.Errorf("mq publisher not initialized")
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 订阅主题，ctx 结束时通道关闭.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, fmt.Errorf("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// Close 关闭发布者与订阅者，返回第一个错误.
func (c *Client) Close() error {
	var first error

	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			first = err
		}
	}

	// gochannel 的发布者与订阅者是同一个对象
	if c.subscriber != nil && any(c.subscriber) != any(c.publisher) {
		if err := c.subscriber.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}
