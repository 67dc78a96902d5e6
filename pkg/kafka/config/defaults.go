package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"

	// -1 newest, -2 oldest
	DefaultConsumerStartOffset       = -1
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 10 * 1024 * 1024
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = 1 * time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerMaxRetries        = 3
	DefaultConsumerRetryBackoff      = 1 * time.Second

	DefaultEnableMiddleware = true
)
