package queue

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/exceleasy/pkg/configs"
	nlog "github.com/yeisme/exceleasy/pkg/log"
	"github.com/yeisme/exceleasy/pkg/tracing"
)

// Publisher 文件事件的尽力发布者：按配置开关过滤，发布失败只记日志.
// 零值与 nil 均可用，此时不发布任何事件.
type Publisher struct {
	mu  sync.RWMutex
	pub message.Publisher
	cfg configs.EventsConfig
}

// NewPublisher 创建事件发布者；pub 为 nil 时全部事件被丢弃.
func NewPublisher(pub message.Publisher, cfg configs.EventsConfig) *Publisher {
	return &Publisher{pub: pub, cfg: cfg}
}

// UpdateConfig 热更新事件开关.
func (p *Publisher) UpdateConfig(cfg configs.EventsConfig) {
	if p == nil {
		return
	}

	p.mu.Lock()
	p.cfg = cfg
	p.mu.Unlock()
}

// Enabled 主题是否会被发布.
func (p *Publisher) Enabled(topic string) bool {
	if p == nil {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.pub == nil || !p.cfg.Enabled {
		return false
	}

	switch topic {
	case TopicFileIngested:
		return p.cfg.File.Ingested
	case TopicFileRejected:
		return p.cfg.File.Rejected
	case TopicFileDeleted:
		return p.cfg.File.Deleted
	default:
		return false
	}
}

// FileIngested 发布 ee.file.ingested.
func (p *Publisher) FileIngested(ctx context.Context, payload FileIngestedPayload) {
	publish(ctx, p, TopicFileIngested, payload)
}

// FileRejected 发布 ee.file.rejected.
func (p *Publisher) FileRejected(ctx context.Context, payload FileRejectedPayload) {
	publish(ctx, p, TopicFileRejected, payload)
}

// FileDeleted 发布 ee.file.deleted.
func (p *Publisher) FileDeleted(ctx context.Context, payload FileDeletedPayload) {
	publish(ctx, p, TopicFileDeleted, payload)
}

func publish[T any](ctx context.Context, p *Publisher, topic string, payload T) {
	if !p.Enabled(topic) {
		return
	}

	var opts []func(*EventHeader)
	if id := tracing.TraceID(ctx); id != "" {
		opts = append(opts, WithTraceID(id))
	}

	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		nlog.Ctx(ctx).Warn().Err(err).Str("topic", topic).Msg("encode event")
		return
	}

	msg.SetContext(ctx)

	if err := p.pub.Publish(topic, msg); err != nil {
		nlog.Ctx(ctx).Warn().Err(err).Str("topic", topic).Msg("publish event")
	}
}

// ParseFileIngested 解析 ee.file.ingested 消息.
func ParseFileIngested(msg *message.Message) (Message[FileIngestedPayload], error) {
	return ParseWatermillMessage[FileIngestedPayload](msg)
}

// ParseFileRejected 解析 ee.file.rejected 消息.
func ParseFileRejected(msg *message.Message) (Message[FileRejectedPayload], error) {
	return ParseWatermillMessage[FileRejectedPayload](msg)
}

// ParseFileDeleted 解析 ee.file.deleted 消息.
func ParseFileDeleted(msg *message.Message) (Message[FileDeletedPayload], error) {
	return ParseWatermillMessage[FileDeletedPayload](msg)
}
