package mq

import (
	"context"
	"time"
)

// Consumer defines the interface for consuming messages
type Consumer interface {
	// Subscribe subscribes to a topic and processes messages with the given handler
	// The handler should return nil on success or an error on failure
	Subscribe(ctx context.Context, topic string, handler HandlerFunc, opts *SubscribeOptions) error

	// Start starts consuming messages
	Start() error

	// Stop gracefully stops consuming messages
	Stop() error

	// Ping verifies the broker connection is alive
	Ping(ctx context.Context) error
}

// Message represents a message in the queue
type Message struct {
	// ID is the unique identifier for the message
	ID string `json:"id"`

	// Body is the message payload
	Body []byte `json:"body"`

	// Headers contains metadata about the message
	Headers map[string]string `json:"headers"`

	// Timestamp is when the message was created
	Timestamp time.Time `json:"timestamp"`

	Topic     string `json:"topic"`
	Partition int    `json:"partition"`
	Offset    int64  `json:"offset"`
}

// HandlerFunc is the function signature for message handlers
// It receives the message and returns an error if processing failed
type HandlerFunc func(ctx context.Context, message *Message) error

// SubscribeOptions defines options for subscribing to a topic
type SubscribeOptions struct {
	// ConsumerGroup is the consumer group name
	ConsumerGroup string `yaml:"consumerGroup" env:"KAFKA_GROUP_ID"`

	// Concurrency sets the number of concurrent workers
	// Default: 1
	Concurrency int `yaml:"concurrency"`

	// PrefetchCount sets the number of messages buffered per worker
	// Default: 1
	PrefetchCount int `yaml:"prefetchCount"`

	// MaxRetries sets how many times a failed handler is re-invoked before the message is committed anyway
	// Default: 0
	MaxRetries int `yaml:"maxRetries"`

	// RetryDelay sets the delay between retries
	// Default: 1 second
	RetryDelay time.Duration `yaml:"retryDelay"`
}

// SetDefaults sets default values for subscribe options
func (o *SubscribeOptions) SetDefaults() {
	if o.PrefetchCount == 0 {
		o.PrefetchCount = 1
	}
	if o.Concurrency == 0 {
		o.Concurrency = 1
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = time.Second
	}
}

// GetHeader retrieves a header value
func (m *Message) GetHeader(key string) (string, bool) {
	if m.Headers == nil {
		return "", false
	}
	val, ok := m.Headers[key]
	return val, ok
}
