package mq_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/internal/storage/mq"
	"github.com/yeisme/exceleasy/pkg/queue"
)

func TestRegisteredTypes(t *testing.T) {
	assert.Equal(t,
		[]configs.MQType{configs.MQTypeGoChannel, configs.MQTypeNATS, configs.MQTypeRedis},
		mq.RegisteredTypes())
}

func TestUnsupportedType(t *testing.T) {
	_, err := mq.New(context.Background(), &configs.MQConfig{Type: "kafka"}, false)
	require.Error(t, err)
}

func roundTrip(t *testing.T, cfg *configs.MQConfig) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mq.New(ctx, cfg, false)
	require.NoError(t, err)

	defer func() { assert.NoError(t, client.Close()) }()

	ch, err := client.Subscribe(ctx, queue.TopicFileDeleted)
	require.NoError(t, err)

	msg, err := queue.NewWatermillMessage(queue.TopicFileDeleted, queue.FileDeletedPayload{DeletedBy: "admin"})
	require.NoError(t, err)
	require.NoError(t, client.Publish(ctx, queue.TopicFileDeleted, msg))

	select {
	case got := <-ch:
		got.Ack()

		env, err := queue.ParseFileDeleted(got)
		require.NoError(t, err)
		assert.Equal(t, "admin", env.Payload.DeletedBy)
	case <-ctx.Done():
		t.Fatal("message not delivered")
	}
}

func TestGoChannelRoundTrip(t *testing.T) {
	roundTrip(t, &configs.MQConfig{Type: configs.MQTypeGoChannel})
}

func TestRedisRoundTrip(t *testing.T) {
	if os.Getenv("ENABLE_REDIS_TEST") == "" {
		t.Skip("set ENABLE_REDIS_TEST=1 to run against a local redis")
	}

	roundTrip(t, &configs.MQConfig{
		Type:  configs.MQTypeRedis,
		Redis: configs.MQRedisConfig{Addr: "localhost:6379"},
	})
}

func TestNATSRoundTrip(t *testing.T) {
	if os.Getenv("ENABLE_NATS_TEST") == "" {
		t.Skip("set ENABLE_NATS_TEST=1 to run against a local nats")
	}

	roundTrip(t, &configs.MQConfig{
		Type: configs.MQTypeNATS,
		Common: configs.MQCommonConfig{
			URL:           "nats://localhost:4222",
			ClientID:      "exceleasy-test",
			ReconnectWait: 1,
			PingInterval:  20,
			MaxPingsOut:   3,
			BufferSize:    configs.DefaultBufferSize,
		},
	})
}
