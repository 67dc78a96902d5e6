package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	kafka_config "printhub/pkg/kafka/config"
	"printhub/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type ConsumerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

type Consumer struct {
	reader       *kafka.Reader
	dlqWriter    *kafka.Writer
	topic        string
	groupID      string
	maxRetries   int
	retryBackoff time.Duration
	handler      MessageHandler
	middleware   []ConsumerMiddleware
	log          *logger.Logger
	closed       bool
	mu           sync.RWMutex
	wg           sync.WaitGroup
}

func NewConsumer(cfg *kafka_config.Config, topic, groupID, dlqTopic string, handler MessageHandler, log *logger.Logger) (*Consumer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}
	if groupID == "" {
		return nil, fmt.Errorf("group ID cannot be empty")
	}
	if handler == nil {
		return nil, fmt.Errorf("message handler cannot be nil")
	}

	c := &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           cfg.Brokers,
			Topic:             topic,
			GroupID:           groupID,
			MinBytes:          cfg.ConsumerMinBytes,
			MaxBytes:          cfg.ConsumerMaxBytes,
			MaxWait:           cfg.ConsumerMaxWait,
			CommitInterval:    cfg.ConsumerCommitInterval,
			HeartbeatInterval: cfg.ConsumerHeartbeatInterval,
			SessionTimeout:    cfg.ConsumerSessionTimeout,
			StartOffset:       cfg.ConsumerStartOffset,
			ErrorLogger:       errorLogger(log),
		}),
		topic:        topic,
		groupID:      groupID,
		maxRetries:   cfg.ConsumerMaxRetries,
		retryBackoff: cfg.ConsumerRetryBackoff,
		handler:      handler,
		log:          log,
	}

	if dlqTopic != "" {
		c.dlqWriter = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        dlqTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			ErrorLogger:  errorLogger(log),
		}
	}

	return c, nil
}

func (c *Consumer) Use(middleware ConsumerMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, middleware)
}

// Start blocks, handling messages until ctx is cancelled or the consumer is closed.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.wg.Add(1)
	chain := chainHandlers(c.handler, c.middleware)
	c.mu.RUnlock()
	defer c.wg.Done()

	for {
		km, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return ErrConsumerClosed
			}
			c.log.Warn("kafka fetch failed", "topic", c.topic, "error", err)
			if !sleepCtx(ctx, c.retryBackoff) {
				return ctx.Err()
			}
			continue
		}

		msg := fromKafkaMessage(km)
		if err := c.process(ctx, chain, msg); err != nil {
			c.log.Error("kafka message dropped",
				"topic", c.topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"event_id", msg.GetEventID(),
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, km); err != nil && ctx.Err() == nil {
			c.log.Warn("kafka commit failed", "topic", c.topic, "offset", km.Offset, "error", err)
		}
	}
}

func (c *Consumer) process(ctx context.Context, chain MessageHandler, msg Message) error {
	for {
		err := chain(ctx, msg)
		if err == nil {
			return nil
		}

		retries := msg.GetRetryCount()
		if ShouldRetry(err, retries, c.maxRetries) {
			msg.IncrementRetryCount()
			c.log.Warn("retrying kafka message",
				"attempt", retries+1,
				"max_retries", c.maxRetries,
				"event_id", msg.GetEventID(),
				"error", err,
			)
			if !sleepCtx(ctx, c.retryBackoff) {
				return ctx.Err()
			}
			continue
		}

		if c.dlqWriter != nil {
			if dlqErr := writeDLQ(ctx, c.dlqWriter, msg, c.topic, c.groupID, err); dlqErr != nil {
				return fmt.Errorf("%w (dead letter write also failed: %v)", err, dlqErr)
			}
		}
		return err
	}
}

func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	// closing the reader unblocks FetchMessage
	err := c.reader.Close()
	c.wg.Wait()

	if c.dlqWriter != nil {
		if dlqErr := c.dlqWriter.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}

func (c *Consumer) Stats() kafka.ReaderStats {
	return c.reader.Stats()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
