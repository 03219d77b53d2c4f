// Package queue 文件导入领域事件：信封结构、主题、负载与发布器.
//
// 每条消息体是 JSON 信封 {"header": {...}, "payload": {...}}，header 记录主题、
// 生产者、发生时间（UTC）与负载版本；同样的字段也写进 watermill 元数据，
// 便于不解码消息体就能路由与排查. 消费者应忽略未知字段.
//
//	ch, _ := sub.Subscribe(ctx, queue.TopicFileIngested)
//	for m := range ch {
//	    env, err := queue.ParseFileIngested(m)
//	    ...
//	    m.Ack()
//	}
package queue

import (
	"errors"
	"fmt"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

const (
	PayloadVersionV1 string = "v1"

	// DefaultProducer 本服务的生产者名.
	DefaultProducer = "exceleasy"
)

// ErrUnsupportedVersion 消息负载版本不被当前消费者支持.
var ErrUnsupportedVersion = errors.New("unsupported payload version")

// NewEventHeader 便捷创建事件头.
func NewEventHeader(topic string, opts ...func(*EventHeader)) EventHeader {
	hdr := EventHeader{
		Topic:      topic,
		OccurredAt: time.Now().UTC(),
		Version:    PayloadVersionV1,
		Producer:   DefaultProducer,
	}
	for _, opt := range opts {
		opt(&hdr)
	}

	return hdr
}

// WithTraceID 设置 TraceID.
func WithTraceID(id string) func(*EventHeader) { return func(h *EventHeader) { h.TraceID = id } }

// WithProducer 设置 Producer.
func WithProducer(p string) func(*EventHeader) { return func(h *EventHeader) { h.Producer = p } }

// Encode 将消息封装为 JSON 字节切片.
func Encode[T any](msg Message[T]) ([]byte, error) { return sonic.Marshal(msg) }

// Decode 从 JSON 字节解码为消息，拒绝不认识的负载版本.
func Decode[T any](b []byte) (Message[T], error) {
	var m Message[T]
	if err := sonic.Unmarshal(b, &m); err != nil {
		return m, err
	}

	if m.Header.Version != "" && m.Header.Version != PayloadVersionV1 {
		return m, fmt.Errorf("%w: %s", ErrUnsupportedVersion, m.Header.Version)
	}

	return m, nil
}

// NewWatermillMessage 构造一个 watermill 消息，设置 ID 与元数据.
func NewWatermillMessage[T any](topic string, payload T, opts ...func(*EventHeader)) (*message.Message, error) {
	header := NewEventHeader(topic, opts...)
	env := Message[T]{Header: header, Payload: payload}

	data, err := Encode(env)
	if err != nil {
		return nil, err
	}

	msg := message.NewMessage(watermill.NewULID(), data)

	for k, v := range map[string]string{
		"topic":       topic,
		"trace_id":    header.TraceID,
		"producer":    header.Producer,
		"version":     header.Version,
		"occurred_at": header.OccurredAt.Format(time.RFC3339Nano),
	} {
		if v != "" {
			msg.Metadata.Set(k, v)
		}
	}

	return msg, nil
}

// ParseWatermillMessage 解出泛型负载.
func ParseWatermillMessage[T any](msg *message.Message) (Message[T], error) {
	return Decode[T](msg.Payload)
}
