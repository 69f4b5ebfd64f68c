// Package fetch downloads recipe pages with a timeout, a bounded number of
// retries and an optional on-disk cache.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/finikeen/recipes-app/internal/cache"
	"github.com/finikeen/recipes-app/internal/robots"
)

// DefaultUserAgent identifies the scraper to recipe sites.
const DefaultUserAgent = "Mozilla/5.0 (compatible; RecipeScraper/1.0)"

// DefaultTimeout bounds one request including reading the body.
const DefaultTimeout = 30 * time.Second

// ErrUnsupportedContentType is returned for responses that are not HTML.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// Reason is the "<code> <text>" form shown to users, e.g. "404 Not Found".
func (e *StatusError) Reason() string {
	text := e.Status
	if text == "" {
		text = http.StatusText(e.Code)
	}
	return strings.TrimSpace(fmt.Sprintf("%d %s", e.Code, text))
}

// Client wraps http.Client with timeouts and limited retry on transient errors.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each attempt. Zero means DefaultTimeout.
	PerRequestTimeout time.Duration
	// Cache, when set, stores bodies and enables conditional revalidation.
	Cache *cache.Pages
	// BypassCache skips conditional headers but still saves fresh responses.
	BypassCache bool
	// RedirectMaxHops caps redirect following. Zero means 5.
	RedirectMaxHops int
	// MaxConcurrent limits in-flight requests. Zero means unlimited.
	MaxConcurrent int
	// Robots, when set, refuses URLs excluded by the site's robots.txt. A
	// robots.txt that cannot be retrieved does not block the fetch.
	Robots *robots.Checker

	limiter     chan struct{}
	limiterOnce sync.Once
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Copy so the redirect policy does not leak into the caller's client.
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) timeout() time.Duration {
	if c.PerRequestTimeout > 0 {
		return c.PerRequestTimeout
	}
	return DefaultTimeout
}

func (c *Client) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

type response struct {
	body         []byte
	contentType  string
	etag         string
	lastModified string
	status       int
}

// Get fetches rawURL and returns the body and its content type.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	if c.Robots != nil {
		allowed, err := c.Robots.Allowed(ctx, rawURL)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("url", rawURL).Msg("robots.txt check failed; continuing")
		case !allowed:
			return nil, "", robots.ErrDisallowed
		}
	}
	var cached *cache.Entry
	if c.Cache != nil && !c.BypassCache {
		if e, err := c.Cache.Entry(ctx, rawURL); err == nil {
			cached = e
		}
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		resp, err := c.tryOnce(ctx, rawURL, cached)
		if err == nil {
			if resp.status == http.StatusNotModified && cached != nil {
				if body, err := c.Cache.Body(ctx, rawURL); err == nil {
					log.Debug().Str("url", rawURL).Msg("page not modified; serving cached copy")
					return body, cached.ContentType, nil
				}
				// Cached body vanished; refetch unconditionally without
				// spending an attempt. Clearing cached makes this happen once.
				log.Debug().Err(err).Str("url", rawURL).Msg("cached body missing; refetching")
				cached = nil
				i--
				continue
			}
			if c.Cache != nil && resp.status == http.StatusOK {
				entry := cache.Entry{URL: rawURL, ContentType: resp.contentType, ETag: resp.etag, LastModified: resp.lastModified}
				if err := c.Cache.Save(ctx, entry, resp.body); err != nil {
					log.Warn().Err(err).Str("url", rawURL).Msg("cache save failed")
				}
			}
			return resp.body, resp.contentType, nil
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 || ctx.Err() != nil {
			break
		}
		log.Debug().Err(err).Int("attempt", i+1).Str("url", rawURL).Msg("retrying fetch")
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, "", lastErr
}

func (c *Client) tryOnce(ctx context.Context, rawURL string, cached *cache.Entry) (response, error) {
	c.acquire()
	defer c.release()

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("new request: %w", err)
	}
	if !isHTTPScheme(req.URL) {
		return response{}, fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)
	}
	req.Header.Set("User-Agent", c.userAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if cached != nil {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return response{status: resp.StatusCode}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return response{}, &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isAllowedHTMLContentType(contentType) {
		return response{}, fmt.Errorf("%w: %s", ErrUnsupportedContentType, contentType)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("read body: %w", err)
	}
	return response{
		body:         b,
		contentType:  contentType,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
		status:       resp.StatusCode,
	}, nil
}

// isTransient treats 5xx responses and per-attempt deadlines as retryable.
func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Code >= 500 && se.Code <= 599
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func isAllowedHTMLContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

func (c *Client) acquire() {
	if c.MaxConcurrent <= 0 {
		return
	}
	c.limiterOnce.Do(func() {
		c.limiter = make(chan struct{}, c.MaxConcurrent)
	})
	c.limiter <- struct{}{}
}

func (c *Client) release() {
	if c.MaxConcurrent <= 0 || c.limiter == nil {
		return
	}
	select {
	case <-c.limiter:
	default:
	}
}
