package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultJWTSecret = "change-me"
	placeholderHost  = "your-project-id"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Images   ImagesConfig   `yaml:"images"`
	JWT      JWTConfig      `yaml:"jwt"`
	Log      LogConfig      `yaml:"log"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Inbox    InboxConfig    `yaml:"inbox"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
	// PublicURL is the origin used when composing share links.
	PublicURL string `yaml:"public_url"`
}

// DatabaseConfig holds row store configuration
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // postgres | sqlite
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Path     string `yaml:"path"` // sqlite file
}

// ImagesConfig holds image hosting configuration
type ImagesConfig struct {
	Region        string `yaml:"region"`
	Bucket        string `yaml:"bucket"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Endpoint      string `yaml:"endpoint"`
	UploadPrefix  string `yaml:"upload_prefix"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// JWTConfig holds signing configuration for inbox stream tokens
type JWTConfig struct {
	Secret    string        `yaml:"secret"`
	StreamTTL time.Duration `yaml:"stream_ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// ViewerConfig holds reveal sequence settings
type ViewerConfig struct {
	CountdownSeconds int `yaml:"countdown_seconds"`
}

// InboxConfig holds inbox refresh settings
type InboxConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8080,
			PublicURL: "http://localhost:5173",
		},
		Database: DatabaseConfig{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			DBName:  "emo_pages",
			SSLMode: "disable",
			Path:    "emo-pages.db",
		},
		Images: ImagesConfig{
			Region:       "us-east-1",
			UploadPrefix: "emo_pages",
		},
		JWT: JWTConfig{
			Secret:    defaultJWTSecret,
			StreamTTL: time.Hour,
		},
		Log:    LogConfig{Level: "info"},
		Viewer: ViewerConfig{CountdownSeconds: 5},
		Inbox:  InboxConfig{PollInterval: 8 * time.Second},
	}
}

// Load reads configuration from a YAML file on top of the defaults and then
// applies environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	set("DATABASE_URL", &c.Database.URL)
	set("DATABASE_PASSWORD", &c.Database.Password)
	set("DATABASE_DRIVER", &c.Database.Driver)
	set("IMAGES_ENDPOINT", &c.Images.Endpoint)
	set("IMAGES_BUCKET", &c.Images.Bucket)
	set("IMAGES_ACCESS_KEY", &c.Images.AccessKey)
	set("IMAGES_SECRET_KEY", &c.Images.SecretKey)
	set("IMAGES_UPLOAD_PREFIX", &c.Images.UploadPrefix)
	set("JWT_SECRET", &c.JWT.Secret)
	set("PUBLIC_URL", &c.Server.PublicURL)
	set("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Viewer.CountdownSeconds < 0 {
		return fmt.Errorf("viewer.countdown_seconds must not be negative")
	}
	if c.Inbox.PollInterval <= 0 {
		return fmt.Errorf("inbox.poll_interval must be positive")
	}
	c.Server.PublicURL = strings.TrimRight(c.Server.PublicURL, "/")
	return nil
}

// Warnings lists settings still at placeholder values. None of them stop the
// server; the caller logs them.
func (c *Config) Warnings() []string {
	var warnings []string

	if c.Database.Driver == "postgres" {
		if strings.Contains(c.Database.URL, placeholderHost) || strings.Contains(c.Database.Host, placeholderHost) {
			warnings = append(warnings, "database endpoint is still the example placeholder")
		}
		if c.Database.URL == "" && c.Database.Password == "" {
			warnings = append(warnings, "database password is empty")
		}
	}
	if c.Images.Bucket == "" || c.Images.AccessKey == "" || c.Images.SecretKey == "" {
		warnings = append(warnings, "image hosting is not configured; uploads will fail")
	}
	if c.JWT.Secret == defaultJWTSecret || c.JWT.Secret == "" {
		warnings = append(warnings, "jwt.secret is the default value")
	}
	return warnings
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
