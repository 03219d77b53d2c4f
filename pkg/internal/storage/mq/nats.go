package mq

import (
	"context"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"

	"github.com/yeisme/exceleasy/pkg/configs"
)

const (
	drainTimeout   = 30 * time.Second
	flusherTimeout = 10 * time.Second
)

func init() {
	RegisterFactory(configs.MQTypeNATS, natsFactory)
}

// natsOptions 连接选项：重连、心跳与认证.
func natsOptions(cfg *configs.MQConfig) []nc.Option {
	c := cfg.Common

	opts := []nc.Option{
		nc.Name(c.ClientID),
		nc.MaxReconnects(c.MaxReconnects),
		nc.ReconnectWait(time.Duration(c.ReconnectWait) * time.Second),
		nc.PingInterval(time.Duration(c.PingInterval) * time.Second),
		nc.MaxPingsOutstanding(c.MaxPingsOut),
		nc.ReconnectBufSize(c.BufferSize),
		nc.DrainTimeout(drainTimeout),
		nc.FlusherTimeout(flusherTimeout),
		nc.RetryOnFailedConnect(!c.StrictConnect),
	}

	if !c.ReconnectJitter {
		opts = append(opts, nc.ReconnectJitter(0, 0))
	}

	switch {
	case cfg.NATS.JWT != "":
		opts = append(opts, nc.UserJWTAndSeed(cfg.NATS.JWT, cfg.NATS.NKey))
	case c.User != "":
		opts = append(opts, nc.UserInfo(c.User, c.Password))
	}

	return opts
}

// jetStreamConfig JetStream 开关与订阅参数.
func jetStreamConfig(cfg *configs.MQConfig) nats.JetStreamConfig {
	n := cfg.NATS
	if !n.JetStreamEnabled {
		return nats.JetStreamConfig{Disabled: true}
	}

	return nats.JetStreamConfig{
		AutoProvision: n.JetStreamAutoProvision,
		TrackMsgId:    n.JetStreamTrackMsgID,
		AckAsync:      n.JetStreamAckAsync,
		DurablePrefix: n.JetStreamDurablePrefix,
		SubscribeOptions: []nc.SubOpt{
			nc.AckWait(time.Duration(n.ConsumerAckWait) * time.Second),
			nc.MaxDeliver(n.ConsumerMaxDeliver),
			nc.MaxAckPending(n.ConsumerMaxAckPending),
		},
	}
}

// natsURL 集群地址优先.
func natsURL(cfg *configs.MQConfig) string {
	if len(cfg.NATS.ClusterURLs) > 0 {
		return strings.Join(cfg.NATS.ClusterURLs, ",")
	}

	return cfg.Common.URL
}

// natsFactory 创建 NATS Publisher & Subscriber，主题前加 subject_prefix.
func natsFactory(_ context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error) {
	opts := natsOptions(cfg)
	js := jetStreamConfig(cfg)
	marshaler := &nats.JSONMarshaler{}

	var subjects nats.SubjectCalculator
	if prefix := cfg.NATS.SubjectPrefix; prefix != "" {
		subjects = func(queueGroupPrefix, topic string) *nats.SubjectDetail {
			return nats.DefaultSubjectCalculator(queueGroupPrefix, prefix+topic)
		}
	}

	pub, err := nats.NewPublisher(nats.PublisherConfig{
		URL:               natsURL(cfg),
		NatsOptions:       opts,
		JetStream:         js,
		Marshaler:         marshaler,
		SubjectCalculator: subjects,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	sub, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:               natsURL(cfg),
		NatsOptions:       opts,
		JetStream:         js,
		Unmarshaler:       marshaler,
		SubjectCalculator: subjects,
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, nil, err
	}

	logger.Info("nats pub/sub ready", watermill.LogFields{
		"jetstream":      cfg.NATS.JetStreamEnabled,
		"subject_prefix": cfg.NATS.SubjectPrefix,
	})

	return pub, sub, nil
}
