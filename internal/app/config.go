package app

import (
	"errors"
	"strings"
	"time"

	"github.com/finikeen/recipes-app/internal/fetch"
)

// Output formats for one-shot scrapes.
const (
	FormatJSON     = "json"
	FormatMarkdown = "md"
)

// Config holds runtime configuration for the application.
type Config struct {
	// One-shot scrape input: a URL or a local HTML file.
	URL       string
	InputPath string
	// OutputPath receives the result; empty means stdout.
	OutputPath string
	Format     string
	PDFPath    string

	// Server
	Serve        bool
	ListenAddr   string
	AllowOrigins []string

	// Fetch
	UserAgent    string
	FetchTimeout time.Duration
	MaxAttempts  int
	// RespectRobots refuses pages excluded by the site's robots.txt.
	RespectRobots bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	Verbose bool
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Format:       FormatJSON,
		ListenAddr:   ":3001",
		UserAgent:    fetch.DefaultUserAgent,
		FetchTimeout: fetch.DefaultTimeout,
		MaxAttempts:  1,
	}
}

// ValidateConfig checks that the settings describe a runnable mode.
func ValidateConfig(cfg Config) error {
	if cfg.FetchTimeout < 0 || cfg.MaxAttempts < 0 || cfg.CacheMaxAge < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.Serve {
		if strings.TrimSpace(cfg.ListenAddr) == "" {
			return errors.New("config: listen address is required to serve")
		}
		return nil
	}
	hasURL := strings.TrimSpace(cfg.URL) != ""
	hasFile := strings.TrimSpace(cfg.InputPath) != ""
	if hasURL == hasFile {
		return errors.New("config: exactly one of url or input file is required")
	}
	switch cfg.Format {
	case FormatJSON, FormatMarkdown:
	default:
		return errors.New("config: format must be json or md")
	}
	return nil
}

// SplitList parses a comma-separated list, trimming items and dropping blanks.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
