package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables that are
// set. Callers apply it after the config file and before explicit flags, so
// env beats the file and flags beat env.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("CORS_ORIGINS"); strings.TrimSpace(v) != "" {
		cfg.AllowOrigins = SplitList(v)
	}
	if v := os.Getenv("SCRAPER_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}

	setDuration := func(dst *time.Duration, envKey string) {
		if s := strings.TrimSpace(os.Getenv(envKey)); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				*dst = d
			}
		}
	}
	setDuration(&cfg.FetchTimeout, "FETCH_TIMEOUT")
	setDuration(&cfg.CacheMaxAge, "CACHE_MAX_AGE")

	if s := strings.TrimSpace(os.Getenv("FETCH_MAX_ATTEMPTS")); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			cfg.MaxAttempts = n
		}
	}

	setBool := func(dst *bool, envKey string) {
		switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
		case "1", "true", "yes", "on":
			*dst = true
		case "0", "false", "no", "off":
			*dst = false
		}
	}
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.RespectRobots, "RESPECT_ROBOTS")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
}
