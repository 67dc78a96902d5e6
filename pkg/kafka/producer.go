package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafka_config "printhub/pkg/kafka/config"
	"printhub/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

type Producer struct {
	writer     *kafka.Writer
	dlqWriter  *kafka.Writer
	topic      string
	log        *logger.Logger
	middleware []ProducerMiddleware
	closed     bool
	mu         sync.RWMutex
}

type ProducerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

func NewProducer(cfg *kafka_config.Config, topic, dlqTopic string, log *logger.Logger) (*Producer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	compression := compressionCodec(cfg.ProducerCompression)
	p := &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: requiredAcks(cfg.ProducerRequireAcks),
			Compression:  compression,
			MaxAttempts:  cfg.ProducerMaxAttempts,
			BatchTimeout: cfg.ProducerBatchTimeout,
			ErrorLogger:  errorLogger(log),
		},
		topic: topic,
		log:   log,
	}

	if dlqTopic != "" {
		p.dlqWriter = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        dlqTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Compression:  compression,
			MaxAttempts:  3,
			ErrorLogger:  errorLogger(log),
		}
	}

	return p, nil
}

func (p *Producer) Use(middleware ProducerMiddleware) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.middleware = append(p.middleware, middleware)
}

func (p *Producer) Publish(ctx context.Context, msg Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrProducerClosed
	}
	chain := chainHandlers(p.write, p.middleware)
	p.mu.RUnlock()

	if msg.Key == "" {
		return ErrEmptyKey
	}
	if len(msg.Value) == 0 {
		return ErrEmptyValue
	}
	if msg.Topic == "" {
		msg.Topic = p.topic
	}

	return chain(ctx, msg)
}

func (p *Producer) write(ctx context.Context, msg Message) error {
	err := p.writer.WriteMessages(ctx, toKafkaMessage(msg))
	if err == nil {
		return nil
	}

	if p.dlqWriter != nil {
		if dlqErr := writeDLQ(ctx, p.dlqWriter, msg, p.topic, "", err); dlqErr != nil {
			return fmt.Errorf("publish failed: %w (dead letter write also failed: %v)", err, dlqErr)
		}
	}
	return err
}

func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	err := p.writer.Close()
	if p.dlqWriter != nil {
		if dlqErr := p.dlqWriter.Close(); err == nil {
			err = dlqErr
		}
	}
	return err
}

func writeDLQ(ctx context.Context, w *kafka.Writer, msg Message, topic, group string, cause error) error {
	headers := make(map[string]string, len(msg.Headers)+4)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderOriginalTopic] = topic
	headers[HeaderDLQError] = cause.Error()
	headers[HeaderDLQTimestamp] = time.Now().UTC().Format(time.RFC3339)
	if group != "" {
		headers[HeaderDLQGroup] = group
	}

	msg.Headers = headers
	msg.Timestamp = time.Now().UTC()
	return w.WriteMessages(ctx, toKafkaMessage(msg))
}

func chainHandlers[M ~func(context.Context, Message, MessageHandler) error](final MessageHandler, middleware []M) MessageHandler {
	handler := final
	for i := len(middleware) - 1; i >= 0; i-- {
		mw := middleware[i]
		next := handler
		handler = func(ctx context.Context, m Message) error {
			return mw(ctx, m, next)
		}
	}
	return handler
}

func compressionCodec(name string) compress.Compression {
	switch name {
	case "none":
		return 0
	case "gzip":
		return compress.Gzip
	case "lz4":
		return compress.Lz4
	case "zstd":
		return compress.Zstd
	default:
		return compress.Snappy
	}
}

func requiredAcks(acks int) kafka.RequiredAcks {
	switch acks {
	case 0:
		return kafka.RequireNone
	case 1:
		return kafka.RequireOne
	default:
		return kafka.RequireAll
	}
}

func errorLogger(log *logger.Logger) kafka.Logger {
	return kafka.LoggerFunc(func(msg string, args ...any) {
		if log != nil {
			log.Error("kafka client error", "detail", fmt.Sprintf(msg, args...))
		}
	})
}
