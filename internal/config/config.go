// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading. Values come
// from built-in defaults, then an optional YAML file named by
// LILYBLOG_CONFIG, then environment variables, each layer overriding the
// previous one.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnv names the environment variable holding the YAML file path.
const ConfigEnv = "LILYBLOG_CONFIG"

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string `yaml:"app_host"`
	Port string `yaml:"app_port"`
	Env  string `yaml:"app_env"` // "development", "production", "testing"

	// Logging
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text or json

	// Database: "postgres" or "sqlite"
	DBDriver   string `yaml:"db_driver"`
	DBHost     string `yaml:"postgres_host"`
	DBPort     string `yaml:"postgres_port"`
	DBUser     string `yaml:"postgres_user"`
	DBPassword string `yaml:"postgres_password"`
	DBName     string `yaml:"postgres_db"`
	SQLitePath string `yaml:"sqlite_path"`

	// Valkey (Redis-compatible cache and sessions). An empty host runs
	// without a listing cache and keeps sessions in memory.
	ValkeyHost     string `yaml:"valkey_host"`
	ValkeyPort     string `yaml:"valkey_port"`
	ValkeyPassword string `yaml:"valkey_password"`
	ValkeyDB       int    `yaml:"valkey_db"`

	// Post content storage. S3 is used when endpoint and keys are set,
	// the local directory otherwise.
	ContentDir  string `yaml:"content_dir"`
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3Region    string `yaml:"s3_region"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3Prefix    string `yaml:"s3_prefix"`

	// Listing behaviour
	ListEmptyPageOK bool          `yaml:"list_empty_page_ok"`
	ListCacheTTL    time.Duration `yaml:"list_cache_ttl"`

	// Development seed data
	AdminEmail    string   `yaml:"admin_email"`
	AdminPassword string   `yaml:"admin_password"`
	SeedTags      []string `yaml:"seed_tags"`
}

func defaults() *Config {
	return &Config{
		Host:      "0.0.0.0",
		Port:      "8080",
		Env:       "development",
		LogLevel:  "info",
		LogFormat: "text",

		DBDriver:   "postgres",
		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "lilyblog",
		DBPassword: "changeme",
		DBName:     "lilyblog",
		SQLitePath: "./lilyblog.db",

		ValkeyPort: "6379",

		ContentDir: "./content",
		S3Region:   "us-east-1",

		ListCacheTTL: time.Minute,

		AdminEmail:    "admin@lilyblog.local",
		AdminPassword: "changeme",
	}
}

// Load builds the configuration and validates it. Returns an error if a
// value is malformed or if critical values are left at their defaults in
// production mode.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv(ConfigEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays the YAML file at path. Keys missing from the file keep
// their current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Host = envOrDefault("APP_HOST", c.Host)
	c.Port = envOrDefault("APP_PORT", c.Port)
	c.Env = envOrDefault("APP_ENV", c.Env)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOrDefault("LOG_FORMAT", c.LogFormat)

	c.DBDriver = envOrDefault("DB_DRIVER", c.DBDriver)
	c.DBHost = envOrDefault("POSTGRES_HOST", c.DBHost)
	c.DBPort = envOrDefault("POSTGRES_PORT", c.DBPort)
	c.DBUser = envOrDefault("POSTGRES_USER", c.DBUser)
	c.DBPassword = envOrDefault("POSTGRES_PASSWORD", c.DBPassword)
	c.DBName = envOrDefault("POSTGRES_DB", c.DBName)
	c.SQLitePath = envOrDefault("SQLITE_PATH", c.SQLitePath)

	c.ValkeyHost = envOrDefault("VALKEY_HOST", c.ValkeyHost)
	c.ValkeyPort = envOrDefault("VALKEY_PORT", c.ValkeyPort)
	c.ValkeyPassword = envOrDefault("VALKEY_PASSWORD", c.ValkeyPassword)

	c.ContentDir = envOrDefault("CONTENT_DIR", c.ContentDir)
	c.S3Endpoint = envOrDefault("S3_ENDPOINT", c.S3Endpoint)
	c.S3Region = envOrDefault("S3_REGION", c.S3Region)
	c.S3AccessKey = envOrDefault("S3_ACCESS_KEY", c.S3AccessKey)
	c.S3SecretKey = envOrDefault("S3_SECRET_KEY", c.S3SecretKey)
	c.S3Bucket = envOrDefault("S3_BUCKET", c.S3Bucket)
	c.S3Prefix = envOrDefault("S3_PREFIX", c.S3Prefix)

	c.AdminEmail = envOrDefault("ADMIN_EMAIL", c.AdminEmail)
	c.AdminPassword = envOrDefault("ADMIN_PASSWORD", c.AdminPassword)

	if v := os.Getenv("VALKEY_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VALKEY_DB: %w", err)
		}
		c.ValkeyDB = db
	}
	if v := os.Getenv("SEED_TAGS"); v != "" {
		c.SeedTags = strings.Split(v, ",")
	}
	if v := os.Getenv("LIST_EMPTY_PAGE_OK"); v != "" {
		ok, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LIST_EMPTY_PAGE_OK: %w", err)
		}
		c.ListEmptyPageOK = ok
	}
	if v := os.Getenv("LIST_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LIST_CACHE_TTL: %w", err)
		}
		c.ListCacheTTL = ttl
	}
	return nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.ValkeyDB < 0 || c.ValkeyDB > 15 {
		return fmt.Errorf("VALKEY_DB must be between 0 and 15, got %d", c.ValkeyDB)
	}
	if c.ListCacheTTL < 0 {
		return fmt.Errorf("LIST_CACHE_TTL must not be negative")
	}

	if c.Env == "production" {
		if c.DBDriver == "postgres" && c.DBPassword == "changeme" {
			return fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SlogLevel returns the configured log level. Load has already validated it.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl
}

// S3Enabled reports whether post content goes to S3.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
