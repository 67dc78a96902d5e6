package kafka_config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "broker-1:9092, broker-2:9092,")

	cfg := Load()

	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "broker-2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.Brokers)
	}
	if cfg.ConsumerMaxRetries != DefaultConsumerMaxRetries {
		t.Errorf("ConsumerMaxRetries = %d, want %d", cfg.ConsumerMaxRetries, DefaultConsumerMaxRetries)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no brokers", func(c *Config) { c.Brokers = nil }, "broker"},
		{"bad compression", func(c *Config) { c.ProducerCompression = "brotli" }, "ProducerCompression"},
		{"bad acks", func(c *Config) { c.ProducerRequireAcks = 2 }, "ProducerRequireAcks"},
		{"bad offset", func(c *Config) { c.ConsumerStartOffset = 5 }, "ConsumerStartOffset"},
		{"zero wait", func(c *Config) { c.ConsumerMaxWait = 0 }, "ConsumerMaxWait"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}
