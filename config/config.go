package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Backend REST API (rooms, room config, users, logs)
	BackendBaseURL string
	BackendTimeout time.Duration

	// PostgreSQL (activity log archive, optional)
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string

	// Redis (session store, login rate limit)
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// Session
	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool

	// Room configuration
	RoomPollInterval           time.Duration
	SendTargetsForNonAutoModes bool

	// Login rate limit
	LoginRateLimitMax        int64
	LoginRateLimitWindowSecs int64

	// CORS
	CORSAllowedOrigins string
	CORSAllowedMethods string
	CORSAllowedHeaders string

	// MQTT (committed room configs, optional)
	MQTTBrokerURL string
	MQTTClientID  string
	MQTTTopicRoot string

	// Server shutdown
	ShutdownTimeoutSecs int64
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "3001"),

		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:4000"),
		BackendTimeout: getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),

		PostgresHost:     getEnv("POSTGRES_HOST", ""),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "smartoffice"),
		PostgresUser:     getEnv("POSTGRES_USER", "admin"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),

		RedisHost:     getEnv("REDIS_HOST", "redis"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		SessionSecret: getEnv("SESSION_SECRET", "change-this-in-production-please"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 8*time.Hour),
		CookieSecure:  getEnvBool("COOKIE_SECURE", false),

		RoomPollInterval:           getEnvDuration("ROOM_POLL_INTERVAL", 120*time.Second),
		SendTargetsForNonAutoModes: getEnvBool("SEND_TARGETS_FOR_NON_AUTO_MODES", true),

		LoginRateLimitMax:        getEnvInt64("LOGIN_RATE_LIMIT_MAX", 10),
		LoginRateLimitWindowSecs: getEnvInt64("LOGIN_RATE_LIMIT_WINDOW_SECS", 300),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),
		CORSAllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PATCH,DELETE,OPTIONS"),
		CORSAllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-ID"),

		MQTTBrokerURL: getEnv("MQTT_BROKER_URL", ""),
		MQTTClientID:  getEnv("MQTT_CLIENT_ID", "smartoffice-console"),
		MQTTTopicRoot: getEnv("MQTT_TOPIC_ROOT", "smartoffice"),

		ShutdownTimeoutSecs: getEnvInt64("SHUTDOWN_TIMEOUT_SECS", 30),
	}
}

// PostgresURL returns an empty string when no activity log database is configured.
func (c *Config) PostgresURL() string {
	if c.PostgresHost == "" {
		return ""
	}
	return "postgres://" + c.PostgresUser + ":" + c.PostgresPassword + "@" + c.PostgresHost + ":" + c.PostgresPort + "/" + c.PostgresDB
}

func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
