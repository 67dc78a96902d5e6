package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "printhub"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB
	DefaultMaxUploadSize  = 20 * 1024 * 1024

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultJWTAccessTTL             = 1 * time.Hour
	DefaultJWTRefreshTTL            = 30 * 24 * time.Hour
	DefaultRequireEmailConfirmation = true

	DefaultUploadBucket   = "user-uploads"
	DefaultAvatarBucket   = "avatars"
	DefaultSignedURLTTL   = 1 * time.Hour
	DefaultPhoneRegion    = "BD"
	DefaultExpiryWindow   = 24 * time.Hour
	DefaultExpiringWindow = 2 * time.Hour

	DefaultCleanupInterval      = 60 * time.Minute
	DefaultCleanupOnStartup     = true
	DefaultRealtimePollFallback = 30 * time.Second

	DefaultSlotDurationMin = 10
	DefaultMaxJobsPerSlot  = 5
	DefaultAdvanceDays     = 30

	DefaultKafkaEnabled       = false
	DefaultPrintJobEventTopic = "print-job-changes"
	DefaultPrintJobEventDLQ   = "print-job-changes-dlq"
)
