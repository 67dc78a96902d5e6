package kafka_config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Brokers []string

	ProducerMaxAttempts  int
	ProducerBatchTimeout time.Duration
	ProducerRequireAcks  int    // -1 all, 0 none, 1 leader
	ProducerCompression  string // none, gzip, snappy, lz4, zstd

	ConsumerStartOffset       int64
	ConsumerMinBytes          int
	ConsumerMaxBytes          int
	ConsumerMaxWait           time.Duration
	ConsumerCommitInterval    time.Duration
	ConsumerHeartbeatInterval time.Duration
	ConsumerSessionTimeout    time.Duration
	ConsumerMaxRetries        int
	ConsumerRetryBackoff      time.Duration

	EnableMiddleware bool
}

// Load reads the Kafka settings from the environment and panics when they are unusable.
func Load() *Config {
	cfg := &Config{
		Brokers: splitBrokers(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers)),

		ProducerMaxAttempts:  getEnvInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
		ProducerBatchTimeout: getEnvDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
		ProducerRequireAcks:  getEnvInt(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
		ProducerCompression:  getEnvStr(EnvKafkaProducerCompression, DefaultProducerCompression),

		ConsumerStartOffset:       int64(getEnvInt(EnvKafkaConsumerStartOffset, DefaultConsumerStartOffset)),
		ConsumerMinBytes:          getEnvInt(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes),
		ConsumerMaxBytes:          getEnvInt(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes),
		ConsumerMaxWait:           getEnvDuration(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait),
		ConsumerCommitInterval:    getEnvDuration(EnvKafkaConsumerCommitInterval, DefaultConsumerCommitInterval),
		ConsumerHeartbeatInterval: getEnvDuration(EnvKafkaConsumerHeartbeatInterval, DefaultConsumerHeartbeatInterval),
		ConsumerSessionTimeout:    getEnvDuration(EnvKafkaConsumerSessionTimeout, DefaultConsumerSessionTimeout),
		ConsumerMaxRetries:        getEnvInt(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries),
		ConsumerRetryBackoff:      getEnvDuration(EnvKafkaConsumerRetryBackoff, DefaultConsumerRetryBackoff),

		EnableMiddleware: getEnvBool(EnvKafkaEnableMiddleware, DefaultEnableMiddleware),
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Kafka configuration validation failed: %v", err))
	}
	return cfg
}

func (cfg *Config) Validate() error {
	var problems []string

	if len(cfg.Brokers) == 0 {
		problems = append(problems, "at least one Kafka broker is required")
	}

	switch cfg.ProducerCompression {
	case "none", "gzip", "snappy", "lz4", "zstd":
	default:
		problems = append(problems, fmt.Sprintf("ProducerCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.ProducerCompression))
	}

	if cfg.ProducerRequireAcks < -1 || cfg.ProducerRequireAcks > 1 {
		problems = append(problems, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", cfg.ProducerRequireAcks))
	}

	if cfg.ConsumerStartOffset != -1 && cfg.ConsumerStartOffset != -2 {
		problems = append(problems, fmt.Sprintf("ConsumerStartOffset must be -1 (newest) or -2 (oldest), got: %d", cfg.ConsumerStartOffset))
	}

	if cfg.ConsumerMaxRetries < 0 {
		problems = append(problems, fmt.Sprintf("ConsumerMaxRetries cannot be negative, got: %d", cfg.ConsumerMaxRetries))
	}

	positive := []struct {
		name  string
		value int64
	}{
		{"ProducerMaxAttempts", int64(cfg.ProducerMaxAttempts)},
		{"ProducerBatchTimeout", int64(cfg.ProducerBatchTimeout)},
		{"ConsumerMinBytes", int64(cfg.ConsumerMinBytes)},
		{"ConsumerMaxBytes", int64(cfg.ConsumerMaxBytes)},
		{"ConsumerMaxWait", int64(cfg.ConsumerMaxWait)},
		{"ConsumerCommitInterval", int64(cfg.ConsumerCommitInterval)},
		{"ConsumerHeartbeatInterval", int64(cfg.ConsumerHeartbeatInterval)},
		{"ConsumerSessionTimeout", int64(cfg.ConsumerSessionTimeout)},
	}
	for _, p := range positive {
		if p.value <= 0 {
			problems = append(problems, p.name+" must be positive")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func (cfg *Config) LogConfiguration(logFunc func(msg string, args ...any)) {
	if logFunc == nil {
		return
	}

	logFunc("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"producer_max_attempts", cfg.ProducerMaxAttempts,
		"producer_require_acks", cfg.ProducerRequireAcks,
		"producer_compression", cfg.ProducerCompression,
		"consumer_start_offset", cfg.ConsumerStartOffset,
		"consumer_max_retries", cfg.ConsumerMaxRetries,
		"enable_middleware", cfg.EnableMiddleware,
	)
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func getEnvStr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
