// Package cache keeps fetched recipe pages on disk so repeat scrapes of the
// same URL can revalidate with ETag/Last-Modified instead of downloading again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	metaSuffix = ".meta.json"
	bodySuffix = ".html"
)

// Entry describes a cached page. The body is stored next to it.
type Entry struct {
	URL          string    `json:"url"`
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified string    `json:"last_modified"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Pages stores each page as <sha256(url)>.meta.json and <sha256(url)>.html
// under Dir. There is no eviction; see PurgeByAge.
type Pages struct {
	Dir string
	// StrictPerms creates the directory 0700 and files 0600.
	StrictPerms bool
}

// ErrNotConfigured is returned when Dir is empty.
var ErrNotConfigured = errors.New("cache dir not configured")

func (c *Pages) dirMode() fs.FileMode {
	if c.StrictPerms {
		return 0o700
	}
	return 0o755
}

func (c *Pages) fileMode() fs.FileMode {
	if c.StrictPerms {
		return 0o600
	}
	return 0o644
}

func (c *Pages) ensureDir() error {
	if c == nil || c.Dir == "" {
		return ErrNotConfigured
	}
	if err := os.MkdirAll(c.Dir, c.dirMode()); err != nil {
		return err
	}
	if c.StrictPerms {
		return os.Chmod(c.Dir, c.dirMode())
	}
	return nil
}

func key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *Pages) metaPath(k string) string { return filepath.Join(c.Dir, k+metaSuffix) }
func (c *Pages) bodyPath(k string) string { return filepath.Join(c.Dir, k+bodySuffix) }

// Entry returns the metadata stored for url. A missing entry yields an error
// satisfying errors.Is(err, fs.ErrNotExist).
func (c *Pages) Entry(_ context.Context, url string) (*Entry, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(c.metaPath(key(url)))
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}
	return &e, nil
}

// Body returns the stored page for url.
func (c *Pages) Body(_ context.Context, url string) ([]byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, err
	}
	return os.ReadFile(c.bodyPath(key(url)))
}

// Save writes the body and then atomically replaces the metadata.
func (c *Pages) Save(_ context.Context, e Entry, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	k := key(e.URL)
	if err := os.WriteFile(c.bodyPath(k), body, c.fileMode()); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if e.FetchedAt.IsZero() {
		e.FetchedAt = time.Now().UTC()
	}
	b, err := json.Marshal(&e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	tmp := c.metaPath(k) + ".tmp"
	if err := os.WriteFile(tmp, b, c.fileMode()); err != nil {
		return fmt.Errorf("write entry: %w", err)
	}
	return os.Rename(tmp, c.metaPath(k))
}
