// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Twitter     TwitterConfig
	Classify    ClassifyConfig
	Topics      TopicsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// TwitterConfig holds acquisition configuration
type TwitterConfig struct {
	BearerToken string
	MockMode    bool
	MaxItems    int
}

// ClassifyConfig holds classification configuration
type ClassifyConfig struct {
	SentimentEndpoint   string
	SentimentToken      string
	PerspectiveAPIKey   string
	NeutralityThreshold float64
	TruncationLength    int
	ChunkSize           int
	InterRequestDelay   time.Duration
}

// TopicsConfig holds topic extraction configuration
type TopicsConfig struct {
	NumTopics     int
	TermsPerTopic int
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "convosense"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Twitter: TwitterConfig{
			BearerToken: getEnv("TWITTER_BEARER_TOKEN", ""),
			MockMode:    getEnvAsBool("MOCK_MODE", true),
			MaxItems:    getEnvAsInt("TWITTER_MAX_ITEMS", 20),
		},
		Classify: ClassifyConfig{
			SentimentEndpoint:   getEnv("SENTIMENT_ENDPOINT", ""),
			SentimentToken:      getEnv("SENTIMENT_API_TOKEN", ""),
			PerspectiveAPIKey:   getEnv("PERSPECTIVE_API_KEY", ""),
			NeutralityThreshold: getEnvAsFloat("SENTIMENT_NEUTRALITY_THRESHOLD", 0.65),
			TruncationLength:    getEnvAsInt("CLASSIFY_TRUNCATION_LENGTH", 512),
			ChunkSize:           getEnvAsInt("CLASSIFY_CHUNK_SIZE", 8),
			InterRequestDelay:   getEnvAsDuration("CLASSIFY_INTER_REQUEST_DELAY", 1100*time.Millisecond),
		},
		Topics: TopicsConfig{
			NumTopics:     getEnvAsInt("TOPICS_NUM_TOPICS", 3),
			TermsPerTopic: getEnvAsInt("TOPICS_TERMS_PER_TOPIC", 8),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Classify.NeutralityThreshold < 0 || config.Classify.NeutralityThreshold > 1 {
		return fmt.Errorf("neutrality threshold must be within [0,1], got %f", config.Classify.NeutralityThreshold)
	}

	if config.Classify.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be positive, got %d", config.Classify.ChunkSize)
	}

	if !config.Twitter.MockMode && config.Twitter.BearerToken == "" && config.Environment != "development" {
		return fmt.Errorf("twitter bearer token must be set when mock mode is disabled")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
