package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	DatabaseURL    string
	AuditArchive   bool
	AdminJWTSecret string

	// Orchestration
	CollaboratorTimeout time.Duration
	AuditStreamMaxItems int

	// Async ingestion
	UseMemoryQueue     bool
	WorkerCount        int
	TelemetryQueueURL  string
	IngestionJobsTable string

	// AWS
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Redis (vehicle state + audit stream sink)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Gemini voice scripts
	GeminiAPIKey  string
	GeminiModelID string

	// Feedback email
	FeedbackOwnerEmail string

	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		AuditArchive:   getEnvAsBool("AUDIT_ARCHIVE_ENABLED", false),
		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		CollaboratorTimeout: getEnvAsDuration("COLLABORATOR_TIMEOUT", 0),
		AuditStreamMaxItems: getEnvAsInt("AUDIT_STREAM_MAX_ITEMS", 10000),

		UseMemoryQueue:     getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:        getEnvAsInt("WORKER_COUNT", 2),
		TelemetryQueueURL:  getEnv("TELEMETRY_QUEUE_URL", ""),
		IngestionJobsTable: getEnv("INGESTION_JOBS_TABLE", "ingestion_jobs"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		FeedbackOwnerEmail: getEnv("FEEDBACK_OWNER_EMAIL", ""),

		EmailProvider:     getEnv("EMAIL_PROVIDER", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "FleetGuard"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "FleetGuard"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
