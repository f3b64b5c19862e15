package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Ledger  LedgerConfig
	Storage StorageConfig
	OCR     OCRConfig
	LLM     LLMConfig
	Mail    MailConfig
	Batch   BatchConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string
}

// LedgerConfig holds processing-queue database configuration
type LedgerConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// StorageConfig holds document-store configuration
type StorageConfig struct {
	BaseURL string
	APIKey  string
	Bucket  string
}

// OCRConfig holds OCR service configuration
type OCRConfig struct {
	SubmitURL    string
	RetrieveURL  string
	APIKey       string
	Timeout      time.Duration
	PollInterval time.Duration
	MaxAttempts  int
	FixedWait    time.Duration
}

// LLMConfig holds extraction model configuration
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// MailConfig holds outbound email configuration
type MailConfig struct {
	BaseURL string
	APIKey  string
	From    string
	Timeout time.Duration
}

// BatchConfig holds pipeline tunables
type BatchConfig struct {
	AnomalyThreshold float64
	LogFile          string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Ledger: LedgerConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Storage: StorageConfig{
			BaseURL: getEnv("STORAGE_URL", ""),
			APIKey:  getEnv("STORAGE_KEY", ""),
			Bucket:  getEnv("STORAGE_BUCKET", "bills"),
		},
		OCR: OCRConfig{
			SubmitURL:    getEnv("OCR_SUBMIT_URL", "https://llmwhisperer-api.us-central.unstract.com/api/v2/whisper"),
			RetrieveURL:  getEnv("OCR_RETRIEVE_URL", "https://llmwhisperer-api.us-central.unstract.com/api/v2/whisper-retrieve"),
			APIKey:       getEnv("LLMWHISPERER_API_KEY", ""),
			Timeout:      getEnvAsDuration("OCR_TIMEOUT", 30*time.Second),
			PollInterval: getEnvAsDuration("OCR_POLL_INTERVAL", 10*time.Second),
			MaxAttempts:  getEnvAsInt("OCR_MAX_ATTEMPTS", 2),
			FixedWait:    getEnvAsDuration("OCR_FIXED_WAIT", 60*time.Second),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
		Mail: MailConfig{
			BaseURL: getEnv("RESEND_BASE_URL", "https://api.resend.com"),
			APIKey:  getEnv("RESEND_API_KEY", ""),
			From:    getEnv("MAIL_FROM", "Bills <bills@notifications.tune.energy>"),
			Timeout: getEnvAsDuration("MAIL_TIMEOUT", 15*time.Second),
		},
		Batch: BatchConfig{
			AnomalyThreshold: getEnvAsFloat64("ANOMALY_THRESHOLD", 0.15),
			LogFile:          getEnv("LOG_FILE", "/tmp/billsd.log"),
		},
	}
}

// Validate checks that configuration required at startup is present.
func (c *Config) Validate() error {
	if c.Ledger.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Storage.BaseURL == "" {
		return NewAppError("CONFIG_ERROR", "STORAGE_URL is required", ErrInvalidInput)
	}
	if c.OCR.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "LLMWHISPERER_API_KEY is required", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Mail.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "RESEND_API_KEY is required", ErrInvalidInput)
	}
	return nil
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
