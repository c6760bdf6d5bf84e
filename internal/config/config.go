package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded once at process start.
type Config struct {
	Environment string
	Server      ServerConfig
	Logging     LoggingConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Gemini      GeminiConfig
	OTP         OTPConfig
	Generation  GenerationConfig
}

type ServerConfig struct {
	Port         int
	TLSPort      int
	EnableTLS    bool
	AutoCert     bool
	Domain       string
	CertFile     string
	KeyFile      string
	AutoCertDir  string
	Email        string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
	PoolSize int
}

type KafkaConfig struct {
	Enabled         bool
	Brokers         []string
	AuthTopic       string
	GenerationTopic string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OTPConfig tunes the simulated SMS verification flow.
type OTPConfig struct {
	Backend       string // "memory" or "redis"
	TTL           time.Duration
	CodeLength    int
	DeliveryDelay time.Duration
	VerifyDelay   time.Duration
	Shards        int
	DebugEndpoint bool
}

// GenerationConfig tunes the generation orchestrator defaults. The hard
// retry ceilings and backoff constants live in the service package.
type GenerationConfig struct {
	ThinkingDelay time.Duration
	MaxRetries    int
}

// LoadConfig reads configuration from the environment, with .env support
// for local development.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			TLSPort:      getEnvInt("SERVER_TLS_PORT", 8443),
			EnableTLS:    getEnvBool("ENABLE_TLS", false),
			AutoCert:     getEnvBool("AUTO_CERT", false),
			Domain:       getEnv("SERVER_DOMAIN", "localhost"),
			CertFile:     getEnv("TLS_CERT_FILE", ""),
			KeyFile:      getEnv("TLS_KEY_FILE", ""),
			AutoCertDir:  getEnv("AUTO_CERT_DIR", "./certs"),
			Email:        getEnv("TLS_EMAIL", ""),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 50),
		},
		Kafka: KafkaConfig{
			Enabled:         getEnvBool("KAFKA_ENABLED", false),
			Brokers:         strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			AuthTopic:       getEnv("KAFKA_AUTH_TOPIC", "auth-events"),
			GenerationTopic: getEnv("KAFKA_GENERATION_TOPIC", "generation-events"),
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/models"),
			Timeout: getEnvDuration("GEMINI_TIMEOUT", 30*time.Second),
		},
		OTP: OTPConfig{
			Backend:       getEnv("OTP_BACKEND", "memory"),
			TTL:           getEnvDuration("OTP_TTL", 10*time.Minute),
			CodeLength:    getEnvInt("OTP_CODE_LENGTH", 6),
			DeliveryDelay: getEnvDuration("OTP_DELIVERY_DELAY", 2*time.Second),
			VerifyDelay:   getEnvDuration("OTP_VERIFY_DELAY", 1*time.Second),
			Shards:        getEnvInt("OTP_SHARDS", 16),
			DebugEndpoint: getEnvBool("OTP_DEBUG_ENDPOINT", true),
		},
		Generation: GenerationConfig{
			ThinkingDelay: getEnvDuration("GENERATION_THINKING_DELAY", 800*time.Millisecond),
			MaxRetries:    getEnvInt("GENERATION_MAX_RETRIES", 5),
		},
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GetServerAddress returns the plain HTTP listen address.
func (c *Config) GetServerAddress() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
