package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the config file schema. Durations are strings such as "30s".
type FileConfig struct {
	Listen string `yaml:"listen" json:"listen"`

	CORS struct {
		Origins []string `yaml:"origins" json:"origins"`
	} `yaml:"cors" json:"cors"`

	Fetch struct {
		UserAgent   string `yaml:"userAgent" json:"userAgent"`
		Timeout     string `yaml:"timeout" json:"timeout"`
		MaxAttempts int    `yaml:"maxAttempts" json:"maxAttempts"`
		Robots      bool   `yaml:"respectRobots" json:"respectRobots"`
	} `yaml:"fetch" json:"fetch"`

	Cache struct {
		Dir         string `yaml:"dir" json:"dir"`
		MaxAge      string `yaml:"maxAge" json:"maxAge"`
		Clear       bool   `yaml:"clear" json:"clear"`
		StrictPerms bool   `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Output struct {
		Format string `yaml:"format" json:"format"`
		PDF    string `yaml:"pdf" json:"pdf"`
	} `yaml:"output" json:"output"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value the file sets onto cfg.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
	if cfg == nil {
		return nil
	}
	if fc.Listen != "" {
		cfg.ListenAddr = fc.Listen
	}
	if len(fc.CORS.Origins) > 0 {
		cfg.AllowOrigins = append([]string{}, fc.CORS.Origins...)
	}
	if fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if fc.Fetch.Timeout != "" {
		d, err := time.ParseDuration(fc.Fetch.Timeout)
		if err != nil {
			return fmt.Errorf("config: fetch.timeout: %w", err)
		}
		cfg.FetchTimeout = d
	}
	if fc.Fetch.MaxAttempts > 0 {
		cfg.MaxAttempts = fc.Fetch.MaxAttempts
	}
	if fc.Fetch.Robots {
		cfg.RespectRobots = true
	}
	if fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if fc.Cache.MaxAge != "" {
		d, err := time.ParseDuration(fc.Cache.MaxAge)
		if err != nil {
			return fmt.Errorf("config: cache.maxAge: %w", err)
		}
		cfg.CacheMaxAge = d
	}
	if fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}
	if fc.Output.Format != "" {
		cfg.Format = fc.Output.Format
	}
	if fc.Output.PDF != "" {
		cfg.PDFPath = fc.Output.PDF
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
	return nil
}
