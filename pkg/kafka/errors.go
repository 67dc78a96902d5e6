package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrProducerClosed = errors.New("kafka producer is closed")
	ErrConsumerClosed = errors.New("kafka consumer is closed")
	ErrEmptyKey       = errors.New("message key cannot be empty")
	ErrEmptyValue     = errors.New("message value cannot be empty")
)

type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	// network blips, timeouts
	ErrorTypeTransient
	// bad payloads, unknown topics
	ErrorTypePermanent
)

// KafkaError tags an error with its retry class.
type KafkaError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *KafkaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *KafkaError) Unwrap() error {
	return e.Err
}

func NewTransientError(message string, err error) *KafkaError {
	return &KafkaError{Type: ErrorTypeTransient, Message: message, Err: err}
}

func NewPermanentError(message string, err error) *KafkaError {
	return &KafkaError{Type: ErrorTypePermanent, Message: message, Err: err}
}

var transientPatterns = []string{
	"connection refused",
	"timeout",
	"deadline exceeded",
	"no such host",
	"network is unreachable",
	"broken pipe",
	"connection reset",
	"temporary failure",
}

// ClassifyError reports whether err is worth retrying. Unknown errors are
// treated as permanent so a poison message cannot stall a partition.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeUnknown
	}

	var kerr *KafkaError
	if errors.As(err, &kerr) && kerr.Type != ErrorTypeUnknown {
		return kerr.Type
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeTransient
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return ErrorTypeTransient
		}
	}
	return ErrorTypePermanent
}

func ShouldRetry(err error, currentRetries, maxRetries int) bool {
	if err == nil || currentRetries >= maxRetries {
		return false
	}
	return ClassifyError(err) == ErrorTypeTransient
}
