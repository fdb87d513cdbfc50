package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const headerID = "x-message-id"

// KafkaConfig defines configuration for the Kafka consumer.
type KafkaConfig struct {
	Brokers  []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	ClientID string   `yaml:"clientId"`

	MinBytes int           `yaml:"minBytes"`
	MaxBytes int           `yaml:"maxBytes"`
	MaxWait  time.Duration `yaml:"maxWait"`

	DialTimeout time.Duration `yaml:"dialTimeout"`

	// StartFromFirst makes a new consumer group start at the earliest offset instead of the latest.
	StartFromFirst bool `yaml:"startFromFirst"`
}

// KafkaConsumer implements Consumer using kafka-go readers, one per subscription.
type KafkaConsumer struct {
	config KafkaConfig
	dialer *kafka.Dialer

	mu            sync.Mutex
	subscriptions []*kafkaSubscription
	started       bool
}

type kafkaSubscription struct {
	topic   string
	handler HandlerFunc
	opts    SubscribeOptions
	baseCtx context.Context

	reader *kafka.Reader
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewKafkaConsumer creates a Kafka-backed consumer.
func NewKafkaConsumer(cfg KafkaConfig) (*KafkaConsumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("brokers are required")
	}
	if cfg.MinBytes == 0 {
		cfg.MinBytes = 1
	}
	if cfg.MaxBytes == 0 {
		cfg.MaxBytes = 10 << 20
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = time.Second
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	dialer := &kafka.Dialer{
		ClientID:  cfg.ClientID,
		Timeout:   cfg.DialTimeout,
		DualStack: true,
	}
	return &KafkaConsumer{config: cfg, dialer: dialer}, nil
}

// Subscribe registers a handler for topic. It starts immediately when the consumer is running.
func (k *KafkaConsumer) Subscribe(ctx context.Context, topic string, handler HandlerFunc, opts *SubscribeOptions) error {
	if topic == "" {
		return errors.New("topic is required")
	}
	if handler == nil {
		return errors.New("handler is required")
	}
	var options SubscribeOptions
	if opts != nil {
		options = *opts
	}
	options.SetDefaults()
	if options.ConsumerGroup == "" {
		options.ConsumerGroup = fmt.Sprintf("submitrelay-%s", topic)
	}

	sub := &kafkaSubscription{
		topic:   topic,
		handler: handler,
		opts:    options,
		baseCtx: ctx,
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.subscriptions = append(k.subscriptions, sub)
	if k.started {
		k.startSubscription(sub)
	}
	return nil
}

// Start starts consuming messages for all subscriptions.
func (k *KafkaConsumer) Start() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.started {
		return nil
	}
	if len(k.subscriptions) == 0 {
		return errors.New("no subscriptions registered")
	}
	for _, sub := range k.subscriptions {
		k.startSubscription(sub)
	}
	k.started = true
	return nil
}

// Stop stops all consumers gracefully. In-flight handlers are awaited.
func (k *KafkaConsumer) Stop() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, sub := range k.subscriptions {
		if sub.cancel != nil {
			sub.cancel()
		}
	}
	var errs []error
	for _, sub := range k.subscriptions {
		sub.wg.Wait()
		if sub.reader != nil {
			if err := sub.reader.Close(); err != nil {
				errs = append(errs, err)
			}
			sub.reader = nil
		}
	}
	k.started = false
	return errors.Join(errs...)
}

// Ping verifies the Kafka connection.
func (k *KafkaConsumer) Ping(ctx context.Context) error {
	conn, err := k.dialer.DialContext(ctx, "tcp", k.config.Brokers[0])
	if err != nil {
		return err
	}
	return conn.Close()
}

func (k *KafkaConsumer) startSubscription(sub *kafkaSubscription) {
	startOffset := kafka.LastOffset
	if k.config.StartFromFirst {
		startOffset = kafka.FirstOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     k.config.Brokers,
		Topic:       sub.topic,
		GroupID:     sub.opts.ConsumerGroup,
		Dialer:      k.dialer,
		MinBytes:    k.config.MinBytes,
		MaxBytes:    k.config.MaxBytes,
		MaxWait:     k.config.MaxWait,
		StartOffset: startOffset,
	})
	sub.reader = reader
	if sub.baseCtx == nil {
		sub.baseCtx = context.Background()
	}
	sub.ctx, sub.cancel = context.WithCancel(sub.baseCtx)

	msgCh := make(chan kafka.Message, sub.opts.Concurrency*sub.opts.PrefetchCount)
	sub.wg.Add(1)
	go func() {
		defer sub.wg.Done()
		defer close(msgCh)
		for {
			msg, err := reader.FetchMessage(sub.ctx)
			if err != nil {
				if sub.ctx.Err() != nil {
					return
				}
				time.Sleep(100 * time.Millisecond)
				continue
			}
			select {
			case msgCh <- msg:
			case <-sub.ctx.Done():
				return
			}
		}
	}()

	for i := 0; i < sub.opts.Concurrency; i++ {
		sub.wg.Add(1)
		go func() {
			defer sub.wg.Done()
			for msg := range msgCh {
				k.handleMessage(sub, msg)
			}
		}()
	}
}

func (k *KafkaConsumer) handleMessage(sub *kafkaSubscription, msg kafka.Message) {
	m := fromKafkaMessage(msg)
	// Handlers and commits use the base context; Stop only halts fetching.
	for attempt := 0; ; attempt++ {
		err := sub.handler(sub.baseCtx, m)
		if err == nil || attempt >= sub.opts.MaxRetries {
			break
		}
		time.Sleep(sub.opts.RetryDelay)
	}
	_ = sub.reader.CommitMessages(sub.baseCtx, msg)
}

func fromKafkaMessage(msg kafka.Message) *Message {
	m := &Message{
		Body:      msg.Value,
		Headers:   make(map[string]string, len(msg.Headers)),
		Timestamp: msg.Time,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	}
	for _, h := range msg.Headers {
		if h.Key == headerID {
			m.ID = string(h.Value)
			continue
		}
		m.Headers[h.Key] = string(h.Value)
	}
	if m.ID == "" {
		m.ID = string(msg.Key)
	}
	return m
}
