package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/multierr"
)

type Config struct {
	Port string

	// Auth for the object and stats routes; empty leaves them open.
	APIKey string

	// Object storage
	DataPath  string // SQLite file; empty keeps objects in memory
	ObjectTTL time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Conversion
	MaxConcurrentConvert int
	GhostscriptPath      string
	ICCProfilePath       string

	// Base for file_url in upload responses; derived from the request when empty.
	PublicBaseURL string

	// Report rendering
	StylesheetPath string

	// Client
	ServiceURL     string
	RequestTimeout time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "3000"),

		APIKey: os.Getenv("PDFDESK_API_KEY"),

		DataPath:  os.Getenv("DATA_PATH"),
		ObjectTTL: envDuration("OBJECT_TTL", 1*time.Hour),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		MaxConcurrentConvert: envInt("MAX_CONCURRENT_CONVERT", 2),
		GhostscriptPath:      envOr("GHOSTSCRIPT_PATH", "gs"),
		ICCProfilePath:       os.Getenv("ICC_PROFILE_PATH"),

		PublicBaseURL: os.Getenv("PUBLIC_BASE_URL"),

		StylesheetPath: os.Getenv("STYLESHEET_PATH"),

		ServiceURL:     envOr("PDFDESK_SERVICE_URL", "http://127.0.0.1:3000"),
		RequestTimeout: envDuration("PDFDESK_REQUEST_TIMEOUT", 0),
	}

	if cfg.ObjectTTL < 0 {
		cfg.ObjectTTL = 1 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MaxConcurrentConvert <= 0 {
		cfg.MaxConcurrentConvert = 2
	}
	if cfg.RequestTimeout < 0 {
		cfg.RequestTimeout = 0
	}

	return cfg
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var err error
	if n, perr := strconv.Atoi(c.Port); perr != nil || n <= 0 || n > 65535 {
		err = multierr.Append(err, fmt.Errorf("PORT %q is not a valid port", c.Port))
	}
	if c.PublicBaseURL != "" {
		if _, perr := url.ParseRequestURI(c.PublicBaseURL); perr != nil {
			err = multierr.Append(err, fmt.Errorf("PUBLIC_BASE_URL: %w", perr))
		}
	}
	if c.ICCProfilePath != "" {
		if _, serr := os.Stat(c.ICCProfilePath); serr != nil {
			err = multierr.Append(err, fmt.Errorf("ICC_PROFILE_PATH: %w", serr))
		}
	}
	if c.StylesheetPath != "" {
		if _, serr := os.Stat(c.StylesheetPath); serr != nil {
			err = multierr.Append(err, fmt.Errorf("STYLESHEET_PATH: %w", serr))
		}
	}
	return err
}

// ValidateClient checks the settings the client binary uses.
func (c Config) ValidateClient() error {
	u, err := url.Parse(c.ServiceURL)
	if err != nil {
		return fmt.Errorf("PDFDESK_SERVICE_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("PDFDESK_SERVICE_URL %q must be http or https", c.ServiceURL)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
