package config

import (
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"printhub/pkg/client"
	kafka_config "printhub/pkg/kafka/config"
	"printhub/pkg/logger"
)

type Config struct {
	ServiceName string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int
	MaxUploadSize  int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	JWTSecret                string
	JWTAccessTTL             time.Duration
	JWTRefreshTTL            time.Duration
	RequireEmailConfirmation bool

	UploadBucket   string
	AvatarBucket   string
	SignedURLTTL   time.Duration
	SealerKey      string
	PublicBaseURL  string
	PhoneRegion    string
	ExpiryWindow   time.Duration
	ExpiringWindow time.Duration

	CleanupInterval      time.Duration
	CleanupOnStartup     bool
	RealtimePollFallback time.Duration

	DefaultSlotDurationMin int
	DefaultMaxJobsPerSlot  int
	DefaultAdvanceDays     int

	KafkaEnabled       bool
	PrintJobEventTopic string
	PrintJobEventDLQ   string
	Kafka              *kafka_config.Config

	Log    *logger.Logger
	Client *client.Client
}

// Load reads an optional .env file, then the process environment.
// Invalid configuration is fatal.
func Load(serviceName string) *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServiceName: serviceName,

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
		MaxUploadSize:  getEnvNum(EnvMaxUploadSize, DefaultMaxUploadSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		JWTSecret:                getEnvStr(EnvJWTSecret, ""),
		JWTAccessTTL:             getEnvDuration(EnvJWTAccessTTL, DefaultJWTAccessTTL),
		JWTRefreshTTL:            getEnvDuration(EnvJWTRefreshTTL, DefaultJWTRefreshTTL),
		RequireEmailConfirmation: getEnvBool(EnvRequireEmailConfirmation, DefaultRequireEmailConfirmation),

		UploadBucket:   getEnvStr(EnvUploadBucket, DefaultUploadBucket),
		AvatarBucket:   getEnvStr(EnvAvatarBucket, DefaultAvatarBucket),
		SignedURLTTL:   getEnvDuration(EnvSignedURLTTL, DefaultSignedURLTTL),
		SealerKey:      getEnvStr(EnvSealerKey, ""),
		PublicBaseURL:  getEnvStr(EnvPublicBaseURL, "http://localhost:"+getEnvStr(EnvPort, DefaultPort)),
		PhoneRegion:    getEnvStr(EnvPhoneRegion, DefaultPhoneRegion),
		ExpiryWindow:   getEnvDuration(EnvExpiryWindow, DefaultExpiryWindow),
		ExpiringWindow: getEnvDuration(EnvExpiringWindow, DefaultExpiringWindow),

		CleanupInterval:      getEnvDuration(EnvCleanupInterval, DefaultCleanupInterval),
		CleanupOnStartup:     getEnvBool(EnvCleanupOnStartup, DefaultCleanupOnStartup),
		RealtimePollFallback: getEnvDuration(EnvRealtimePollFallback, DefaultRealtimePollFallback),

		DefaultSlotDurationMin: getEnvNum(EnvDefaultSlotDuration, DefaultSlotDurationMin),
		DefaultMaxJobsPerSlot:  getEnvNum(EnvDefaultMaxJobsPerSlot, DefaultMaxJobsPerSlot),
		DefaultAdvanceDays:     getEnvNum(EnvDefaultAdvanceDays, DefaultAdvanceDays),

		KafkaEnabled:       getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		PrintJobEventTopic: getEnvStr(EnvPrintJobEventTopic, DefaultPrintJobEventTopic),
		PrintJobEventDLQ:   getEnvStr(EnvPrintJobEventDLQ, DefaultPrintJobEventDLQ),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if cfg.KafkaEnabled {
		cfg.Kafka = kafka_config.Load()
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if len(cfg.JWTSecret) < 32 {
		errors = append(errors, fmt.Sprintf("JWTSecret must be at least 32 characters, got: %d", len(cfg.JWTSecret)))
	}
	if cfg.JWTRefreshTTL <= cfg.JWTAccessTTL {
		errors = append(errors, fmt.Sprintf("JWTRefreshTTL (%s) must be longer than JWTAccessTTL (%s)", cfg.JWTRefreshTTL, cfg.JWTAccessTTL))
	}

	positive := map[string]time.Duration{
		"MongoConnTimeout":     cfg.MongoConnTimeout,
		"RateLimitWindow":      cfg.RateLimitWindow,
		"RequestTimeout":       cfg.RequestTimeout,
		"IdempotencyTTL":       cfg.IdempotencyTTL,
		"ReadTimeout":          cfg.ReadTimeout,
		"WriteTimeout":         cfg.WriteTimeout,
		"IdleTimeout":          cfg.IdleTimeout,
		"ShutdownTimeout":      cfg.ShutdownTimeout,
		"JWTAccessTTL":         cfg.JWTAccessTTL,
		"SignedURLTTL":         cfg.SignedURLTTL,
		"ExpiryWindow":         cfg.ExpiryWindow,
		"CleanupInterval":      cfg.CleanupInterval,
		"RealtimePollFallback": cfg.RealtimePollFallback,
	}
	for _, name := range slices.Sorted(maps.Keys(positive)) {
		if positive[name] <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", name, positive[name]))
		}
	}
	if cfg.ExpiringWindow <= 0 || cfg.ExpiringWindow >= cfg.ExpiryWindow {
		errors = append(errors, fmt.Sprintf("ExpiringWindow must be positive and shorter than ExpiryWindow, got: %s", cfg.ExpiringWindow))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}
	if cfg.MaxUploadSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxUploadSize must be positive, got: %d", cfg.MaxUploadSize))
	}

	if cfg.UploadBucket == "" || cfg.AvatarBucket == "" {
		errors = append(errors, "UploadBucket and AvatarBucket cannot be empty")
	}

	if cfg.DefaultSlotDurationMin < 5 || cfg.DefaultSlotDurationMin > 120 {
		errors = append(errors, fmt.Sprintf("DefaultSlotDurationMin must be between 5 and 120, got: %d", cfg.DefaultSlotDurationMin))
	}
	if cfg.DefaultMaxJobsPerSlot < 1 || cfg.DefaultMaxJobsPerSlot > 50 {
		errors = append(errors, fmt.Sprintf("DefaultMaxJobsPerSlot must be between 1 and 50, got: %d", cfg.DefaultMaxJobsPerSlot))
	}
	if cfg.DefaultAdvanceDays < 1 || cfg.DefaultAdvanceDays > 365 {
		errors = append(errors, fmt.Sprintf("DefaultAdvanceDays must be between 1 and 365, got: %d", cfg.DefaultAdvanceDays))
	}

	if cfg.KafkaEnabled && cfg.PrintJobEventTopic == "" {
		errors = append(errors, "PrintJobEventTopic cannot be empty when Kafka is enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"max_upload_size", cfg.MaxUploadSize,
		"jwt_secret_set", cfg.JWTSecret != "",
		"jwt_access_ttl", cfg.JWTAccessTTL,
		"jwt_refresh_ttl", cfg.JWTRefreshTTL,
		"require_email_confirmation", cfg.RequireEmailConfirmation,
		"upload_bucket", cfg.UploadBucket,
		"avatar_bucket", cfg.AvatarBucket,
		"signed_url_ttl", cfg.SignedURLTTL,
		"signed_url_key_set", cfg.SealerKey != "",
		"file_expiry_window", cfg.ExpiryWindow,
		"cleanup_interval", cfg.CleanupInterval,
		"cleanup_on_startup", cfg.CleanupOnStartup,
		"realtime_poll_fallback", cfg.RealtimePollFallback,
		"default_slot_duration_min", cfg.DefaultSlotDurationMin,
		"default_max_jobs_per_slot", cfg.DefaultMaxJobsPerSlot,
		"default_advance_days", cfg.DefaultAdvanceDays,
		"kafka_enabled", cfg.KafkaEnabled,
		"print_job_event_topic", cfg.PrintJobEventTopic,
	)
	if cfg.Kafka != nil {
		cfg.Kafka.LogConfiguration(cfg.Log.Info)
	}
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
