package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lebfix/lebfix-client/internal/logging"
)

type Config struct {
	API      APIConfig      `yaml:"api"`
	Store    StoreConfig    `yaml:"store"`
	Callback CallbackConfig `yaml:"callback"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	App      AppConfig      `yaml:"app"`
}

type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
}

// StoreConfig selects where the session token is persisted.
type StoreConfig struct {
	Backend       string `yaml:"backend"` // bolt, redis, memory
	Path          string `yaml:"path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

type CallbackConfig struct {
	Addr         string        `yaml:"addr"`
	LoginTimeout time.Duration `yaml:"login_timeout"`
}

type RefreshConfig struct {
	Schedule string `yaml:"schedule"`
}

type AppConfig struct {
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
	Version     string `yaml:"version"`
}

const (
	StoreBolt   = "bolt"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logging.For("config").Debug().Msg("no .env file found, using environment variables")
	}

	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("LEBFIX_CONFIG")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		API: APIConfig{
			RequestTimeout: 30 * time.Second,
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		Store: StoreConfig{
			Backend:   StoreBolt,
			Path:      defaultStorePath(),
			RedisAddr: "localhost:6379",
		},
		Callback: CallbackConfig{
			Addr:         "127.0.0.1:8765",
			LoginTimeout: 5 * time.Minute,
		},
		Refresh: RefreshConfig{
			Schedule: "@every 30s",
		},
		App: AppConfig{
			Environment: "development",
			LogLevel:    "info",
			Version:     "1.0.0",
		},
	}
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.API.BaseURL = getEnv("LEBFIX_API_URL", c.API.BaseURL)
	c.API.RequestTimeout = getEnvAsDuration("REQUEST_TIMEOUT", c.API.RequestTimeout)
	c.API.RateLimitRPS = getEnvAsFloat("RATE_LIMIT_RPS", c.API.RateLimitRPS)
	c.API.RateLimitBurst = getEnvAsInt("RATE_LIMIT_BURST", c.API.RateLimitBurst)

	c.Store.Backend = strings.ToLower(getEnv("TOKEN_STORE", c.Store.Backend))
	c.Store.Path = getEnv("TOKEN_STORE_PATH", c.Store.Path)
	c.Store.RedisAddr = getEnv("REDIS_ADDR", c.Store.RedisAddr)
	c.Store.RedisPassword = getEnv("REDIS_PASSWORD", c.Store.RedisPassword)
	c.Store.RedisDB = getEnvAsInt("REDIS_DB", c.Store.RedisDB)

	c.Callback.Addr = getEnv("CALLBACK_ADDR", c.Callback.Addr)
	c.Callback.LoginTimeout = getEnvAsDuration("LOGIN_TIMEOUT", c.Callback.LoginTimeout)

	c.Refresh.Schedule = getEnv("REFRESH_SCHEDULE", c.Refresh.Schedule)

	c.App.Environment = getEnv("APP_ENV", c.App.Environment)
	c.App.LogLevel = getEnv("LOG_LEVEL", c.App.LogLevel)
	c.App.Version = getEnv("APP_VERSION", c.App.Version)
}

func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("LEBFIX_API_URL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("LEBFIX_API_URL must be an absolute URL, got %q", c.API.BaseURL)
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")

	switch c.Store.Backend {
	case StoreBolt:
		if c.Store.Path == "" {
			return fmt.Errorf("TOKEN_STORE_PATH is required for the bolt store")
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("TOKEN_STORE must be one of bolt, redis, memory; got %q", c.Store.Backend)
	}

	if c.Callback.Addr == "" {
		return fmt.Errorf("CALLBACK_ADDR is required")
	}

	return nil
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "lebfix.db"
	}
	return filepath.Join(dir, "lebfix", "session.db")
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logging.For("config").Warn().Str("key", key).Int("default", defaultValue).Msg("invalid integer, using default")
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		logging.For("config").Warn().Str("key", key).Float64("default", defaultValue).Msg("invalid number, using default")
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logging.For("config").Warn().Str("key", key).Dur("default", defaultValue).Msg("invalid duration, using default")
		return defaultValue
	}

	return value
}
