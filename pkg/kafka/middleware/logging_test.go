package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"printhub/pkg/kafka"
	"printhub/pkg/logger"
)

func TestLoggingConsumerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.DEBUG, Output: &buf})
	mw := LoggingConsumerMiddleware(log)

	msg, err := kafka.NewMessage().WithKey("job-1").WithJSON(map[string]string{"a": "b"}).WithEventType("print_jobs.UPDATE").Build()
	if err != nil {
		t.Fatal(err)
	}

	wantErr := errors.New("boom")
	got := mw(context.Background(), msg, func(context.Context, kafka.Message) error { return wantErr })
	if !errors.Is(got, wantErr) {
		t.Fatalf("expected handler error to pass through, got %v", got)
	}
	if !strings.Contains(buf.String(), "kafka message handling failed") {
		t.Errorf("missing failure log: %s", buf.String())
	}

	buf.Reset()
	if err := mw(context.Background(), msg, func(context.Context, kafka.Message) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "print_jobs.UPDATE") {
		t.Errorf("expected event type in log: %s", buf.String())
	}
}
