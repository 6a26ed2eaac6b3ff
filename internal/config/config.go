// internal/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMuxBaseURL = "https://api.mux.com"
	defaultRTMPURL    = "rtmps://global-live.mux.com:443/app"
)

type Config struct {
	// Server
	Port           string
	Environment    string
	LogLevel       string
	StaticDir      string
	AllowedOrigins []string
	MaxConnections int
	GRPCPort       string

	// Mux
	MuxTokenID       string
	MuxTokenSecret   string
	MuxBaseURL       string
	MuxRTMPURL       string
	MuxRateLimit     float64
	MuxRateBurst     int
	MuxWebhookSecret string

	// Stream Chat
	StreamAPIKey    string
	StreamAPISecret string
	StreamTokenTTL  time.Duration

	// Recordings fan-out
	FanOutLimit int

	// Event sinks
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisChannel      string
	AWSRegion         string
	KinesisStreamName string

	// Timeouts
	HTTPTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads the process configuration from the environment. A .env file in
// the working directory is applied first when present; real environment
// variables win over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Server
		Port:           getEnv("PORT", "3001"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		StaticDir:      getEnv("STATIC_DIR", "public"),
		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MaxConnections: getEnvAsInt("MAX_CONNECTIONS", 0),
		GRPCPort:       os.Getenv("GRPC_PORT"),

		// Mux
		MuxTokenID:       getEnv("MUX_TOKEN_ID", ""),
		MuxTokenSecret:   getEnv("MUX_TOKEN_SECRET", ""),
		MuxBaseURL:       getEnv("MUX_BASE_URL", defaultMuxBaseURL),
		MuxRTMPURL:       getEnv("MUX_RTMP_URL", defaultRTMPURL),
		MuxRateLimit:     getEnvAsFloat("MUX_RATE_LIMIT", 0),
		MuxRateBurst:     getEnvAsInt("MUX_RATE_BURST", 10),
		MuxWebhookSecret: getEnv("MUX_WEBHOOK_SECRET", ""),

		// Stream Chat
		StreamAPIKey:    getEnv("STREAM_API_KEY", ""),
		StreamAPISecret: getEnv("STREAM_API_SECRET", ""),
		StreamTokenTTL:  getEnvAsDuration("STREAM_TOKEN_TTL", 0),

		FanOutLimit: getEnvAsInt("FANOUT_LIMIT", 10),

		// Event sinks
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		RedisChannel:      getEnv("REDIS_CHANNEL", "stream-events"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		KinesisStreamName: getEnv("KINESIS_STREAM_NAME", ""),

		// Timeouts
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// GRPCEnabled reports whether the gRPC health listener should start.
// GRPC_PORT unset means the default port; an explicit "off" disables it.
func (c *Config) GRPCEnabled() bool {
	return c.GRPCListenPort() != ""
}

func (c *Config) GRPCListenPort() string {
	switch strings.ToLower(c.GRPCPort) {
	case "":
		return "9090"
	case "off", "0", "false":
		return ""
	default:
		return c.GRPCPort
	}
}

// ChatConfigured reports whether both Stream Chat credentials are present.
func (c *Config) ChatConfigured() bool {
	return c.StreamAPIKey != "" && c.StreamAPISecret != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
