package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/indico-client/client"
)

// Config holds all application configuration
type Config struct {
	Indico  IndicoConfig
	Journal JournalConfig
}

// IndicoConfig holds platform connection configuration
type IndicoConfig struct {
	Host              string
	Protocol          string
	APIToken          string
	APITokenPath      string
	Timeout           time.Duration
	UploadBatchSize   int
	UploadConcurrency int
}

// JournalConfig holds submission journal configuration
type JournalConfig struct {
	URL string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Indico: IndicoConfig{
			Host:              getEnv("INDICO_HOST", client.DefaultHost),
			Protocol:          getEnv("INDICO_PROTOCOL", client.DefaultProtocol),
			APIToken:          getEnv("INDICO_API_TOKEN", ""),
			APITokenPath:      getEnv("INDICO_API_TOKEN_PATH", ""),
			Timeout:           getEnvAsDuration("INDICO_TIMEOUT", client.DefaultTimeout),
			UploadBatchSize:   getEnvAsInt("INDICO_UPLOAD_BATCH", client.DefaultUploadBatchSize),
			UploadConcurrency: getEnvAsInt("INDICO_UPLOAD_CONCURRENCY", client.DefaultUploadConcurrency),
		},
		Journal: JournalConfig{
			URL: getEnv("JOURNAL_URL", "sqlite://indico-journal.db"),
		},
	}
}

// ClientConfig converts the platform section into a client.Config.
func (c IndicoConfig) ClientConfig() client.Config {
	return client.Config{
		Host:              c.Host,
		Protocol:          c.Protocol,
		APIToken:          c.APIToken,
		APITokenPath:      c.APITokenPath,
		Timeout:           c.Timeout,
		UploadBatchSize:   c.UploadBatchSize,
		UploadConcurrency: c.UploadConcurrency,
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("INDICO_HOST", c.Indico.Host, Required)
	v.Field("INDICO_PROTOCOL", c.Indico.Protocol, OneOf("http", "https"))
	v.Field("INDICO_UPLOAD_BATCH", c.Indico.UploadBatchSize, Positive)
	v.Field("INDICO_UPLOAD_CONCURRENCY", c.Indico.UploadConcurrency, Positive)
	v.Field("JOURNAL_URL", c.Journal.URL, Required)
	return v.Error()
}

// ValidateAuth checks that a platform token is configured. Only commands that
// call the platform need one.
func (c IndicoConfig) ValidateAuth() error {
	v := NewValidator()
	if strings.TrimSpace(c.APIToken) == "" && strings.TrimSpace(c.APITokenPath) == "" {
		v.Field("INDICO_API_TOKEN", "", func(field string, value any) *ValidationError {
			return &ValidationError{Field: field, Value: value, Message: "is required unless INDICO_API_TOKEN_PATH is set"}
		})
	}
	return v.Error()
}
