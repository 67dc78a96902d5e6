package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"
	EnvMaxUploadSize  = "MAX_UPLOAD_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvJWTSecret                = "JWT_SECRET"
	EnvJWTAccessTTL             = "JWT_ACCESS_TTL"
	EnvJWTRefreshTTL            = "JWT_REFRESH_TTL"
	EnvRequireEmailConfirmation = "REQUIRE_EMAIL_CONFIRMATION"

	EnvUploadBucket   = "UPLOAD_BUCKET"
	EnvAvatarBucket   = "AVATAR_BUCKET"
	EnvSignedURLTTL   = "SIGNED_URL_TTL"
	EnvSealerKey      = "SIGNED_URL_KEY"
	EnvPublicBaseURL  = "PUBLIC_BASE_URL"
	EnvPhoneRegion    = "DEFAULT_PHONE_REGION"
	EnvExpiryWindow   = "FILE_EXPIRY_WINDOW"
	EnvExpiringWindow = "FILE_EXPIRING_WINDOW"

	EnvCleanupInterval      = "CLEANUP_INTERVAL"
	EnvCleanupOnStartup     = "CLEANUP_ON_STARTUP"
	EnvRealtimePollFallback = "REALTIME_POLL_FALLBACK"

	EnvDefaultSlotDuration   = "DEFAULT_SLOT_DURATION_MIN"
	EnvDefaultMaxJobsPerSlot = "DEFAULT_MAX_JOBS_PER_SLOT"
	EnvDefaultAdvanceDays    = "DEFAULT_ADVANCE_DAYS"

	EnvKafkaEnabled       = "KAFKA_ENABLED"
	EnvPrintJobEventTopic = "PRINT_JOB_EVENT_TOPIC"
	EnvPrintJobEventDLQ   = "PRINT_JOB_EVENT_DLQ"
)
