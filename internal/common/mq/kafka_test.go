package mq

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestNewKafkaConsumerDefaults(t *testing.T) {
	if _, err := NewKafkaConsumer(KafkaConfig{}); err == nil {
		t.Fatalf("expected error without brokers")
	}

	consumer, err := NewKafkaConsumer(KafkaConfig{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if consumer.config.MinBytes != 1 || consumer.config.MaxBytes != 10<<20 {
		t.Fatalf("unexpected byte defaults %+v", consumer.config)
	}
	if consumer.config.MaxWait != time.Second || consumer.dialer.Timeout != 10*time.Second {
		t.Fatalf("unexpected timing defaults %+v", consumer.config)
	}
}

func TestKafkaConsumerSubscribe(t *testing.T) {
	consumer, err := NewKafkaConsumer(KafkaConfig{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	handler := func(ctx context.Context, m *Message) error { return nil }

	if err := consumer.Start(); err == nil {
		t.Fatalf("expected start to fail without subscriptions")
	}
	if err := consumer.Subscribe(context.Background(), "", handler, nil); err == nil {
		t.Fatalf("expected error for empty topic")
	}
	if err := consumer.Subscribe(context.Background(), "submissions", nil, nil); err == nil {
		t.Fatalf("expected error for nil handler")
	}
	if err := consumer.Subscribe(context.Background(), "submissions", handler, &SubscribeOptions{Concurrency: 4}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	sub := consumer.subscriptions[0]
	if sub.opts.ConsumerGroup != "submitrelay-submissions" {
		t.Fatalf("unexpected consumer group %q", sub.opts.ConsumerGroup)
	}
	if sub.opts.Concurrency != 4 || sub.opts.PrefetchCount != 1 || sub.opts.RetryDelay != time.Second {
		t.Fatalf("unexpected options %+v", sub.opts)
	}
	if err := consumer.Stop(); err != nil {
		t.Fatalf("stop before start failed: %v", err)
	}
}

func TestFromKafkaMessage(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 30, 15, 0, time.UTC)
	msg := fromKafkaMessage(kafka.Message{
		Topic:     "submissions",
		Partition: 3,
		Offset:    42,
		Key:       []byte("key-1"),
		Value:     []byte(`{"Records":[]}`),
		Time:      now,
		Headers: []kafka.Header{
			{Key: headerID, Value: []byte("msg-1")},
			{Key: "source", Value: []byte("sns-bridge")},
		},
	})

	if msg.ID != "msg-1" || msg.Topic != "submissions" || msg.Partition != 3 || msg.Offset != 42 {
		t.Fatalf("unexpected message %+v", msg)
	}
	if string(msg.Body) != `{"Records":[]}` || !msg.Timestamp.Equal(now) {
		t.Fatalf("unexpected body or timestamp %+v", msg)
	}
	if v, ok := msg.GetHeader("source"); !ok || v != "sns-bridge" {
		t.Fatalf("expected source header, got %q", v)
	}
	if _, ok := msg.GetHeader(headerID); ok {
		t.Fatalf("id header should not be duplicated into headers")
	}

	keyed := fromKafkaMessage(kafka.Message{Key: []byte("key-2")})
	if keyed.ID != "key-2" {
		t.Fatalf("expected key fallback id, got %q", keyed.ID)
	}
}
