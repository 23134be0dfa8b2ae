package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	DatabaseURL    string `yaml:"database_url"`
	RedisURL       string `yaml:"redis_url"`
	ServerPort     string `yaml:"server_port"`
	UserAgent      string `yaml:"user_agent"`
	Timeout        string `yaml:"timeout"`
	LogLevel       string `yaml:"log_level"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// LoadFromFile loads config from a YAML file. Missing keys get the same
// defaults as Load.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c := &Config{
		DatabaseURL:    f.DatabaseURL,
		RedisURL:       f.RedisURL,
		ServerPort:     f.ServerPort,
		UserAgent:      f.UserAgent,
		LogLevel:       f.LogLevel,
		MaxUploadBytes: f.MaxUploadBytes,
	}
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return nil, invalid("timeout", f.Timeout)
		}
		c.Timeout = d
	}
	c.applyDefaults()
	return c, nil
}
