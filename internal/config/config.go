// Package config provides configuration loading from environment variables
// and the site's _config.yml.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Static errors for configuration validation.
var (
	// ErrSiteRootRequired is returned when SITE_ROOT is not set.
	ErrSiteRootRequired = errors.New("config: SITE_ROOT is required")
	// ErrInvalidConfig is returned when a value fails validation.
	ErrInvalidConfig = errors.New("config: invalid value")
)

// DefaultSiteConfig is the site configuration file looked up under SITE_ROOT.
const DefaultSiteConfig = "_config.yml"

// Config holds all configuration for the application.
type Config struct {
	// Site settings
	SiteRoot   string `env:"SITE_ROOT, required" json:"site_root" validate:"required"`
	SiteConfig string `env:"SITE_CONFIG" json:"site_config,omitempty"`

	// Tool settings; site config values apply when these are unset.
	ConvertCmd  string        `env:"IMAGEMAGICK_CONVERT" json:"imagemagick_convert,omitempty"`
	IdentifyCmd string        `env:"IMAGEMAGICK_IDENTIFY" json:"imagemagick_identify,omitempty"`
	ToolTimeout time.Duration `env:"TOOL_TIMEOUT, default=60s" json:"tool_timeout" validate:"gte=0"`

	// Output settings
	CDNURL  string `env:"CDN_URL" json:"cdn_url,omitempty" validate:"omitempty,url|startswith=//"`
	Caption string `env:"CAPTION" json:"caption,omitempty"`

	// Server settings
	Port int `env:"PORT, default=8080" json:"port" validate:"min=1,max=65535"`

	// Optional S3 publishing settings
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty" validate:"omitempty,url"`
	S3Prefix           string `env:"S3_PREFIX" json:"s3_prefix,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format" validate:"oneof=text json TEXT JSON"`
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"` // "debug", "info", "warn", "error"
}

// SiteConfig is the subset of the site's _config.yml the tag reads.
type SiteConfig struct {
	ImagemagickConvert  string `yaml:"imagemagick_convert"`
	ImagemagickIdentify string `yaml:"imagemagick_identify"`
	// CDNURL only applies to production builds.
	CDNURL     string `yaml:"cdn_url"`
	Production bool   `yaml:"production"`
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Load reads configuration from environment variables using go-envconfig,
// overlays the site configuration file and validates the result.
func Load() (*Config, error) {
	return LoadWithLookuper(envconfig.OsLookuper())
}

// LoadWithLookuper is Load with a custom environment source.
func LoadWithLookuper(l envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}

	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   cfg,
		Lookuper: l,
	}); err != nil {
		// Map envconfig errors to our domain errors for required fields
		if strings.Contains(err.Error(), "SITE_ROOT") {
			return nil, ErrSiteRootRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	if err := cfg.applySiteConfig(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applySiteConfig fills unset tool settings from the site config file, and
// the CDN prefix when the site is marked production. A missing default file
// is not an error; a missing explicit one is.
func (c *Config) applySiteConfig() error {
	path := c.SiteConfig
	explicit := path != ""
	if !explicit {
		path = filepath.Join(c.SiteRoot, DefaultSiteConfig)
	}

	site, err := ReadSiteConfig(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	if c.ConvertCmd == "" {
		c.ConvertCmd = site.ImagemagickConvert
	}
	if c.IdentifyCmd == "" {
		c.IdentifyCmd = site.ImagemagickIdentify
	}
	if c.CDNURL == "" && site.Production {
		c.CDNURL = site.CDNURL
	}
	return nil
}

// ReadSiteConfig parses a site configuration file. Unknown keys are ignored.
func ReadSiteConfig(path string) (*SiteConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("read site config: %w", err)
	}

	var site SiteConfig
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("parse site config %s: %w", path, err)
	}
	return &site, nil
}

// Validate checks that all configuration values are acceptable.
func (c *Config) Validate() error {
	if c.SiteRoot == "" {
		return ErrSiteRootRequired
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	return c.NewLoggerTo(os.Stderr)
}

// NewLoggerTo is NewLogger writing to w.
func (c *Config) NewLoggerTo(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{SiteRoot: %s, ConvertCmd: %s, IdentifyCmd: %s, ToolTimeout: %s, CDNURL: %s, Port: %d, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.SiteRoot,
		c.ConvertCmd,
		c.IdentifyCmd,
		c.ToolTimeout,
		c.CDNURL,
		c.Port,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
