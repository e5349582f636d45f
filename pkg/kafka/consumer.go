package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	applogger "FinDash/pkg/logger"
)

// MessageHandler handles messages from a specific topic.
type MessageHandler interface {
	Topic() string
	Handle(context.Context, []byte) error
}

// Consumer runs one reader per registered topic and a worker pool per reader.
type Consumer struct {
	cfg      *ConsumerConfig
	logger   *applogger.Logger
	handlers map[string]MessageHandler
	readers  []*kafka.Reader
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewConsumer creates a new Kafka consumer.
func NewConsumer(logger *applogger.Logger, opts ...ConsumerOption) (*Consumer, error) {
	cfg := &ConsumerConfig{
		GroupID:     "findash",
		WorkerCount: 1,
		RetryMax:    3,
		BackoffMin:  50 * time.Millisecond,
		BackoffMax:  2 * time.Second,
		MinBytes:    1,
		MaxBytes:    10e6,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if logger == nil {
		logger = applogger.Nop()
	}

	initConsumerMetricsOnce()
	return &Consumer{
		cfg:      cfg,
		logger:   logger,
		handlers: make(map[string]MessageHandler),
	}, nil
}

// RegisterHandler registers a message handler for its topic.
func (c *Consumer) RegisterHandler(handler MessageHandler) {
	topic := handler.Topic()
	if _, ok := c.handlers[topic]; ok {
		c.logger.Warn("kafka handler already registered", applogger.String("topic", topic))
		return
	}
	c.handlers[topic] = handler
}

// Start launches readers and workers; it returns immediately.
func (c *Consumer) Start(ctx context.Context) error {
	if len(c.handlers) == 0 {
		return fmt.Errorf("no handlers registered")
	}
	ctx, c.cancel = context.WithCancel(ctx)

	for topic, handler := range c.handlers {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  c.cfg.Brokers,
			Topic:    topic,
			GroupID:  c.cfg.GroupID,
			MinBytes: c.cfg.MinBytes,
			MaxBytes: c.cfg.MaxBytes,
		})
		c.readers = append(c.readers, reader)

		for i := 0; i < c.cfg.WorkerCount; i++ {
			c.wg.Add(1)
			go c.work(ctx, reader, handler)
		}
		c.logger.Info("kafka consumer started",
			applogger.String("topic", topic),
			applogger.String("group", c.cfg.GroupID),
			applogger.Int("workers", c.cfg.WorkerCount),
		)
	}
	return nil
}

func (c *Consumer) work(ctx context.Context, reader *kafka.Reader, handler MessageHandler) {
	defer c.wg.Done()
	topic := handler.Topic()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			consumerErrors.WithLabelValues(topic, "fetch").Inc()
			c.logger.Error("kafka fetch failed", applogger.String("topic", topic), applogger.Error(err))
			if !sleepCtx(ctx, c.cfg.BackoffMin) {
				return
			}
			continue
		}

		start := time.Now()
		if err := c.handleWithRetry(ctx, handler, msg.Value); err != nil {
			consumerErrors.WithLabelValues(topic, "handle").Inc()
			c.logger.Error("kafka message dropped after retries",
				applogger.String("topic", topic),
				applogger.Int("partition", msg.Partition),
				applogger.Any("offset", msg.Offset),
				applogger.Error(err),
			)
		}
		consumerLatency.WithLabelValues(topic).Observe(time.Since(start).Seconds())
		consumerMessages.WithLabelValues(topic).Inc()

		if err := reader.CommitMessages(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
			consumerErrors.WithLabelValues(topic, "commit").Inc()
			c.logger.Warn("kafka commit failed", applogger.String("topic", topic), applogger.Error(err))
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, handler MessageHandler, data []byte) error {
	backoff := c.cfg.BackoffMin
	var err error
	for attempt := 0; attempt <= c.cfg.RetryMax; attempt++ {
		if err = handler.Handle(ctx, data); err == nil {
			return nil
		}
		if attempt == c.cfg.RetryMax || !sleepCtx(ctx, backoff) {
			break
		}
		backoff *= 2
		if backoff > c.cfg.BackoffMax {
			backoff = c.cfg.BackoffMax
		}
	}
	return err
}

// Stop cancels workers, waits for them and closes readers.
func (c *Consumer) Stop(ctx context.Context) error {
	var closeErr error
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		done := make(chan struct{})
		go func() { c.wg.Wait(); close(done) }()
		select {
		case <-done:
		case <-ctx.Done():
			closeErr = ctx.Err()
		}
		for _, r := range c.readers {
			if err := r.Close(); err != nil && closeErr == nil {
				closeErr = err
			}
		}
	})
	return closeErr
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

var (
	consumerMessages *prometheus.CounterVec
	consumerErrors   *prometheus.CounterVec
	consumerLatency  *prometheus.HistogramVec
	consumerOnce     sync.Once
)

func initConsumerMetricsOnce() {
	consumerOnce.Do(func() {
		consumerMessages = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "findash_kafka_consumer_messages_total",
			Help: "Messages processed by the consumer",
		}, []string{"topic"})
		consumerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "findash_kafka_consumer_errors_total",
			Help: "Consumer errors by stage",
		}, []string{"topic", "stage"})
		consumerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "findash_kafka_consumer_handle_seconds",
			Help:    "Handler latency including retries",
			Buckets: prometheus.DefBuckets,
		}, []string{"topic"})
	})
}
