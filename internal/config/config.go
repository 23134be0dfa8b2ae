package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults applied when a setting is absent.
const (
	DefaultServerPort     = "8080"
	DefaultUserAgent      = "ChannelDeck/1.0"
	DefaultTimeout        = 30 * time.Second
	DefaultLogLevel       = "info"
	DefaultMaxUploadBytes = 32 << 20
)

// ErrInvalidValue is returned when a setting cannot be parsed.
var ErrInvalidValue = errors.New("invalid config value")

// Config holds application configuration. DatabaseURL and RedisURL are optional:
// without a database playlists live in memory, without Redis nothing is cached
// and refreshes run inline.
type Config struct {
	DatabaseURL    string        `yaml:"database_url" env:"DATABASE_URL"`
	RedisURL       string        `yaml:"redis_url" env:"REDIS_URL"`
	ServerPort     string        `yaml:"server_port" env:"SERVER_PORT"`
	UserAgent      string        `yaml:"user_agent" env:"FETCHER_USER_AGENT"`
	Timeout        time.Duration `yaml:"timeout" env:"FETCHER_TIMEOUT"`
	LogLevel       string        `yaml:"log_level" env:"LOG_LEVEL"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
}

// Load builds config from environment variables.
// If neither DATABASE_URL nor REDIS_URL is set, Load first tries .env.local and .env
// from the current directory and the executable's directory.
func Load() (*Config, error) {
	if os.Getenv("DATABASE_URL") == "" && os.Getenv("REDIS_URL") == "" {
		loadEnvFiles()
	}
	c := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		ServerPort:  os.Getenv("SERVER_PORT"),
		UserAgent:   os.Getenv("FETCHER_USER_AGENT"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}
	if s := os.Getenv("FETCHER_TIMEOUT"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, invalid("FETCHER_TIMEOUT", s)
		}
		c.Timeout = d
	}
	if s := os.Getenv("MAX_UPLOAD_BYTES"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n <= 0 {
			return nil, invalid("MAX_UPLOAD_BYTES", s)
		}
		c.MaxUploadBytes = n
	}
	c.applyDefaults()
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.ServerPort == "" {
		c.ServerPort = DefaultServerPort
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
}

func invalid(key, value string) error {
	return fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, value)
}
