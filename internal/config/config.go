// Package config provides application configuration.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Port           string        `yaml:"port"`
	FrontendURL    string        `yaml:"frontend_url"`
	DBPath         string        `yaml:"db_path"`
	GRPCHealthPort string        `yaml:"grpc_health_port"` // empty disables the gRPC health server
	AllowedOrigins []string      `yaml:"allowed_origins"`
	Webhooks       WebhookConfig `yaml:"webhooks"`
	Session        SessionConfig `yaml:"session"`
	Upload         UploadConfig  `yaml:"upload"`
}

// WebhookConfig lists the external endpoints every surface relies on.
type WebhookConfig struct {
	Auth        string        `yaml:"auth"`
	ChatGeneral string        `yaml:"chat_general"`
	ChatCEI     string        `yaml:"chat_cei"`
	Upload      string        `yaml:"upload"`
	Timeout     time.Duration `yaml:"timeout"` // 0 = no timeout
}

// SessionConfig controls session cookies and abandoned-session cleanup.
type SessionConfig struct {
	Secret        string        `yaml:"secret"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// UploadConfig controls the upload surface.
type UploadConfig struct {
	NoticeTTL       time.Duration `yaml:"notice_ttl"`
	MaxRequestBytes int64         `yaml:"max_request_bytes"`
	MaxQueueBytes   int64         `yaml:"max_queue_bytes"`
}

func defaults() *Config {
	return &Config{
		Port:           "8080",
		DBPath:         "./data/portal.db",
		AllowedOrigins: []string{"*"},
		Session: SessionConfig{
			IdleTTL:       12 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Upload: UploadConfig{
			NoticeTTL:       5 * time.Second,
			MaxRequestBytes: 64 << 20,
			MaxQueueBytes:   256 << 20,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in increasing precedence. An empty path falls back
// to CONFIG_FILE.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
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
	c.Port = getEnv("PORT", c.Port)
	c.FrontendURL = getEnv("FRONTEND_URL", c.FrontendURL)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.GRPCHealthPort = getEnv("GRPC_HEALTH_PORT", c.GRPCHealthPort)
	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}

	c.Webhooks.Auth = getEnv("AUTH_WEBHOOK_URL", c.Webhooks.Auth)
	c.Webhooks.ChatGeneral = getEnv("CHAT_GENERAL_WEBHOOK_URL", c.Webhooks.ChatGeneral)
	c.Webhooks.ChatCEI = getEnv("CHAT_CEI_WEBHOOK_URL", c.Webhooks.ChatCEI)
	c.Webhooks.Upload = getEnv("UPLOAD_WEBHOOK_URL", c.Webhooks.Upload)
	c.Webhooks.Timeout = getEnvDuration("GATEWAY_TIMEOUT", c.Webhooks.Timeout)

	c.Session.Secret = getEnv("SESSION_SECRET", c.Session.Secret)
	c.Session.IdleTTL = getEnvDuration("SESSION_IDLE_TTL", c.Session.IdleTTL)
	c.Session.SweepInterval = getEnvDuration("SESSION_SWEEP_INTERVAL", c.Session.SweepInterval)

	c.Upload.NoticeTTL = getEnvDuration("UPLOAD_NOTICE_TTL", c.Upload.NoticeTTL)
	c.Upload.MaxRequestBytes = int64(getEnvInt("UPLOAD_MAX_REQUEST_BYTES", int(c.Upload.MaxRequestBytes)))
	c.Upload.MaxQueueBytes = int64(getEnvInt("UPLOAD_MAX_QUEUE_BYTES", int(c.Upload.MaxQueueBytes)))
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}

	required := []struct {
		key   string
		value string
	}{
		{"AUTH_WEBHOOK_URL", c.Webhooks.Auth},
		{"CHAT_GENERAL_WEBHOOK_URL", c.Webhooks.ChatGeneral},
		{"CHAT_CEI_WEBHOOK_URL", c.Webhooks.ChatCEI},
		{"UPLOAD_WEBHOOK_URL", c.Webhooks.Upload},
	}
	for _, r := range required {
		if err := validateURL(r.key, r.value); err != nil {
			return err
		}
	}

	if len(c.Session.Secret) < 16 {
		return fmt.Errorf("SESSION_SECRET must be at least 16 characters")
	}
	if c.Session.IdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be > 0")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be > 0")
	}
	if c.Upload.NoticeTTL <= 0 {
		return fmt.Errorf("UPLOAD_NOTICE_TTL must be > 0")
	}
	if c.Upload.MaxRequestBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_REQUEST_BYTES must be > 0")
	}
	if c.Webhooks.Timeout < 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT cannot be negative")
	}
	return nil
}

func validateURL(key, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", key)
	}
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", key, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL", key)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
