package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
}

const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderCorrelationID = "correlation-id"
	HeaderSource        = "source"
	HeaderTimestamp     = "timestamp"
	HeaderRetryCount    = "retry-count"
	HeaderOriginalTopic = "original-topic"
	HeaderDLQError      = "dlq-error"
	HeaderDLQTimestamp  = "dlq-timestamp"
	HeaderDLQGroup      = "dlq-consumer-group"
)

// MessageHandler processes one consumed message. A nil return commits it.
type MessageHandler func(ctx context.Context, msg Message) error

type MessageBuilder struct {
	msg Message
	err error
}

func NewMessage() *MessageBuilder {
	return &MessageBuilder{
		msg: Message{
			Headers:   make(map[string]string),
			Timestamp: time.Now().UTC(),
		},
	}
}

func (mb *MessageBuilder) WithKey(key string) *MessageBuilder {
	mb.msg.Key = key
	return mb
}

// WithJSON encodes value as the payload. Encoding failures surface from Build.
func (mb *MessageBuilder) WithJSON(value any) *MessageBuilder {
	data, err := json.Marshal(value)
	if err != nil {
		mb.err = fmt.Errorf("encode message value: %w", err)
		return mb
	}
	mb.msg.Value = data
	return mb
}

func (mb *MessageBuilder) WithHeader(key, value string) *MessageBuilder {
	mb.msg.Headers[key] = value
	return mb
}

func (mb *MessageBuilder) WithEventType(eventType string) *MessageBuilder {
	return mb.WithHeader(HeaderEventType, eventType)
}

func (mb *MessageBuilder) WithCorrelationID(correlationID string) *MessageBuilder {
	if correlationID == "" {
		return mb
	}
	return mb.WithHeader(HeaderCorrelationID, correlationID)
}

func (mb *MessageBuilder) WithSource(source string) *MessageBuilder {
	return mb.WithHeader(HeaderSource, source)
}

func (mb *MessageBuilder) Build() (Message, error) {
	if mb.err != nil {
		return Message{}, mb.err
	}
	if mb.msg.Headers[HeaderEventID] == "" {
		mb.msg.Headers[HeaderEventID] = uuid.New().String()
	}
	if mb.msg.Headers[HeaderTimestamp] == "" {
		mb.msg.Headers[HeaderTimestamp] = mb.msg.Timestamp.Format(time.RFC3339)
	}
	return mb.msg, nil
}

func (m *Message) DecodeValue(v any) error {
	return json.Unmarshal(m.Value, v)
}

func (m *Message) GetEventID() string {
	return m.Headers[HeaderEventID]
}

func (m *Message) GetEventType() string {
	return m.Headers[HeaderEventType]
}

func (m *Message) GetCorrelationID() string {
	return m.Headers[HeaderCorrelationID]
}

func (m *Message) GetRetryCount() int {
	count, err := strconv.Atoi(m.Headers[HeaderRetryCount])
	if err != nil {
		return 0
	}
	return count
}

func (m *Message) IncrementRetryCount() {
	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}
	m.Headers[HeaderRetryCount] = strconv.Itoa(m.GetRetryCount() + 1)
}

func toKafkaMessage(msg Message) kafka.Message {
	km := kafka.Message{
		Key:   []byte(msg.Key),
		Value: msg.Value,
		Time:  msg.Timestamp,
	}
	for k, v := range msg.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return km
}

func fromKafkaMessage(km kafka.Message) Message {
	msg := Message{
		Key:       string(km.Key),
		Value:     km.Value,
		Headers:   make(map[string]string, len(km.Headers)),
		Topic:     km.Topic,
		Partition: km.Partition,
		Offset:    km.Offset,
		Timestamp: km.Time,
	}
	for _, h := range km.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
