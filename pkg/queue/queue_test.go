package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/exceleasy/pkg/configs"
	"github.com/yeisme/exceleasy/pkg/queue"
)

func allOn() configs.EventsConfig {
	return configs.EventsConfig{
		Enabled: true,
		File:    configs.FileEventsConfig{Ingested: true, Rejected: true, Deleted: true},
	}
}

func receive(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()

	select {
	case m := <-ch:
		m.Ack()
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	payload := queue.FileIngestedPayload{
		File:     queue.FileRef{ID: "01J", Owner: "alice", FileName: "sales.xlsx"},
		RowCount: 2,
	}

	msg, err := queue.NewWatermillMessage(queue.TopicFileIngested, payload, queue.WithTraceID("t-1"))
	require.NoError(t, err)
	assert.Equal(t, queue.TopicFileIngested, msg.Metadata.Get("topic"))
	assert.Equal(t, "t-1", msg.Metadata.Get("trace_id"))

	env, err := queue.ParseFileIngested(msg)
	require.NoError(t, err)
	assert.Equal(t, queue.TopicFileIngested, env.Header.Topic)
	assert.Equal(t, queue.DefaultProducer, env.Header.Producer)
	assert.Equal(t, queue.PayloadVersionV1, env.Header.Version)
	assert.Equal(t, payload, env.Payload)
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	msg := message.NewMessage(watermill.NewULID(),
		[]byte(`{"header":{"topic":"ee.file.deleted","version":"v2"},"payload":{}}`))

	_, err := queue.ParseFileDeleted(msg)
	require.ErrorIs(t, err, queue.ErrUnsupportedVersion)
}

func TestPublisherHonoursSwitches(t *testing.T) {
	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 8}, watermill.NopLogger{})
	defer ps.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ingested, err := ps.Subscribe(ctx, queue.TopicFileIngested)
	require.NoError(t, err)
	rejected, err := ps.Subscribe(ctx, queue.TopicFileRejected)
	require.NoError(t, err)

	cfg := allOn()
	cfg.File.Rejected = false
	p := queue.NewPublisher(ps, cfg)

	p.FileRejected(ctx, queue.FileRejectedPayload{Owner: "alice", Reason: "nope"})
	p.FileIngested(ctx, queue.FileIngestedPayload{File: queue.FileRef{ID: "a"}})

	env, err := queue.ParseFileIngested(receive(t, ingested))
	require.NoError(t, err)
	assert.Equal(t, "a", env.Payload.File.ID)

	select {
	case <-rejected:
		t.Fatal("rejected event published while switched off")
	case <-time.After(50 * time.Millisecond):
	}

	p.UpdateConfig(allOn())
	p.FileRejected(ctx, queue.FileRejectedPayload{Owner: "alice", Kind: "decode_error"})

	rej, err := queue.ParseFileRejected(receive(t, rejected))
	require.NoError(t, err)
	assert.Equal(t, "decode_error", rej.Payload.Kind)
}

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(string, ...*message.Message) error {
	f.calls++
	return errors.New("broker down")
}

func (f *failingPublisher) Close() error { return nil }

func TestPublisherIsBestEffort(t *testing.T) {
	f := &failingPublisher{}
	p := queue.NewPublisher(f, allOn())

	assert.NotPanics(t, func() {
		p.FileDeleted(context.Background(), queue.FileDeletedPayload{DeletedBy: "bob"})
	})
	assert.Equal(t, 1, f.calls)

	var nilPub *queue.Publisher
	assert.False(t, nilPub.Enabled(queue.TopicFileDeleted))
	assert.NotPanics(t, func() { nilPub.FileDeleted(context.Background(), queue.FileDeletedPayload{}) })

	off := queue.NewPublisher(f, configs.EventsConfig{})
	off.FileIngested(context.Background(), queue.FileIngestedPayload{})
	assert.Equal(t, 1, f.calls)
}

func TestIsFileTopic(t *testing.T) {
	assert.True(t, queue.IsFileTopic("ee.file.deleted"))
	assert.False(t, queue.IsFileTopic(queue.TopicFileAll))
}
