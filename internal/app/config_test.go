package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipes.yaml")
	content := `listen: ":8080"
cors:
  origins: ["http://localhost:5173"]
fetch:
  userAgent: yaml-agent
  timeout: 12s
  maxAttempts: 2
cache:
  dir: /var/cache/recipes
  maxAge: 24h
  strictPerms: true
output:
  format: md
verbose: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.UserAgent != "yaml-agent" {
		t.Fatalf("ListenAddr=%q UserAgent=%q", cfg.ListenAddr, cfg.UserAgent)
	}
	if cfg.FetchTimeout != 12*time.Second || cfg.MaxAttempts != 2 {
		t.Fatalf("FetchTimeout=%v MaxAttempts=%d", cfg.FetchTimeout, cfg.MaxAttempts)
	}
	if cfg.CacheDir != "/var/cache/recipes" || cfg.CacheMaxAge != 24*time.Hour || !cfg.CacheStrictPerms {
		t.Fatalf("cache settings not applied: %+v", cfg)
	}
	if cfg.Format != FormatMarkdown || !cfg.Verbose {
		t.Fatalf("Format=%q Verbose=%v", cfg.Format, cfg.Verbose)
	}
	if len(cfg.AllowOrigins) != 1 || cfg.AllowOrigins[0] != "http://localhost:5173" {
		t.Fatalf("AllowOrigins=%v", cfg.AllowOrigins)
	}
}

func TestLoadConfigFile_JSONKeepsUnsetDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "recipes.json")
	if err := os.WriteFile(path, []byte(`{"fetch":{"timeout":"3s"}}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Fatalf("FetchTimeout=%v, want 3s", cfg.FetchTimeout)
	}
	if cfg.ListenAddr != DefaultConfig().ListenAddr || cfg.Format != FormatJSON {
		t.Fatalf("defaults overwritten: %+v", cfg)
	}
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
	var fc FileConfig
	fc.Cache.MaxAge = "a week"
	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" http://a.example , ,https://b.example,")
	if len(got) != 2 || got[0] != "http://a.example" || got[1] != "https://b.example" {
		t.Fatalf("SplitList=%q", got)
	}
	if got := SplitList(""); len(got) != 0 {
		t.Fatalf("SplitList(\"\")=%q, want empty", got)
	}
}

func TestValidateConfig(t *testing.T) {
	base := DefaultConfig()
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"url", func(c *Config) { c.URL = "https://example.com/r" }, false},
		{"file", func(c *Config) { c.InputPath = "page.html" }, false},
		{"neither", func(c *Config) {}, true},
		{"both", func(c *Config) { c.URL = "https://example.com"; c.InputPath = "page.html" }, true},
		{"bad format", func(c *Config) { c.URL = "https://example.com"; c.Format = "xml" }, true},
		{"serve", func(c *Config) { c.Serve = true }, false},
		{"serve without addr", func(c *Config) { c.Serve = true; c.ListenAddr = " " }, true},
		{"negative timeout", func(c *Config) { c.Serve = true; c.FetchTimeout = -time.Second }, true},
	}
	for _, tc := range cases {
		cfg := base
		tc.mutate(&cfg)
		err := ValidateConfig(cfg)
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s: err=%v, wantErr=%v", tc.name, err, tc.wantErr)
		}
	}
}
