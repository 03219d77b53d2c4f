package mq

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/yeisme/exceleasy/pkg/configs"
)

func init() {
	RegisterFactory(configs.MQTypeGoChannel, gochannelFactory)
}

// gochannelFactory 进程内 Pub/Sub，非 persistent 模式下订阅之前发布的消息会丢失.
func gochannelFactory(_ context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	ps := NewGoChannel(cfg.GoChannel, logger)
	return ps, ps, nil
}

// NewGoChannel 创建进程内 Pub/Sub.
func NewGoChannel(cfg configs.MQGoChannelConfig, logger watermill.LoggerAdapter) *gochannel.GoChannel {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	buf := cfg.OutputBuffer
	if buf <= 0 {
		buf = configs.DefaultMQChannelBuffer
	}

	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: buf,
		Persistent:          cfg.Persistent,
	}, logger)
}
