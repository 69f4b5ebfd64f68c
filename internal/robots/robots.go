// Package robots decides whether a page may be fetched under its site's
// robots.txt.
package robots

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ErrDisallowed is returned by callers that refuse a URL excluded by robots.txt.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// maxBody caps how much of a robots.txt is read.
const maxBody = 512 << 10

const fetchTimeout = 10 * time.Second

// Rules is a parsed robots.txt.
type Rules struct {
	groups []group
}

type group struct {
	agents []string
	rules  []rule
}

type rule struct {
	allow bool
	re    *regexp.Regexp
	// weight is the pattern length without wildcards; longer wins.
	weight int
}

// Parse reads robots.txt text. Unknown directives and malformed lines are
// ignored.
func Parse(text string) Rules {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var groups []group
	var cur group
	inRules := false
	flush := func() {
		if len(cur.agents) > 0 {
			groups = append(groups, cur)
		}
		cur = group{}
		inRules = false
	}
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "user-agent", "useragent":
			// A user-agent after rules starts a new group.
			if inRules {
				flush()
			}
			cur.agents = append(cur.agents, strings.ToLower(val))
		case "allow", "disallow":
			inRules = true
			if val == "" {
				continue
			}
			cur.rules = append(cur.rules, rule{
				allow:  key == "allow",
				re:     compilePattern(val),
				weight: len(strings.ReplaceAll(strings.TrimSuffix(val, "$"), "*", "")),
			})
		}
	}
	flush()
	return Rules{groups: groups}
}

// compilePattern anchors the pattern at the path start; '*' matches any run
// and a trailing '$' anchors the end.
func compilePattern(p string) *regexp.Regexp {
	anchorEnd := strings.HasSuffix(p, "$")
	p = strings.TrimSuffix(p, "$")
	parts := strings.Split(p, "*")
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	expr := "^" + strings.Join(parts, ".*")
	if anchorEnd {
		expr += "$"
	}
	return regexp.MustCompile(expr)
}

// Allowed reports whether path (with optional query) may be fetched by
// userAgent. The group whose agent token is the longest substring of the user
// agent applies, falling back to "*". Within it the longest matching pattern
// wins and Allow wins ties. No match means allowed.
func (r Rules) Allowed(userAgent, path string) bool {
	g := r.groupFor(userAgent)
	if g == nil {
		return true
	}
	best := -1
	allowed := true
	for _, rl := range g.rules {
		if !rl.re.MatchString(path) {
			continue
		}
		if rl.weight > best || (rl.weight == best && rl.allow) {
			best = rl.weight
			allowed = rl.allow
		}
	}
	return allowed
}

func (r Rules) groupFor(userAgent string) *group {
	ua := strings.ToLower(userAgent)
	var best *group
	bestScore := -1
	for i := range r.groups {
		for _, a := range r.groups[i].agents {
			score := -1
			switch {
			case a == "*":
				score = 0
			case a != "" && strings.Contains(ua, a):
				score = len(a)
			}
			if score > bestScore {
				bestScore = score
				best = &r.groups[i]
			}
		}
	}
	return best
}

// Checker fetches and caches robots.txt per origin.
type Checker struct {
	HTTPClient *http.Client
	UserAgent  string
	// TTL is how long rules are reused. Zero means 30 minutes.
	TTL time.Duration

	mu    sync.Mutex
	rules map[string]cached
	now   func() time.Time
}

type cached struct {
	rules   Rules
	expires time.Time
}

// Allowed reports whether pageURL may be fetched. A missing robots.txt (any
// 4xx) allows everything; network failures and 5xx responses are returned
// as errors for the caller to judge.
func (c *Checker) Allowed(ctx context.Context, pageURL string) (bool, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false, fmt.Errorf("parse url: %w", err)
	}
	rules, err := c.rulesFor(ctx, u)
	if err != nil {
		return false, err
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return rules.Allowed(c.UserAgent, path), nil
}

func (c *Checker) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now()
}

func (c *Checker) rulesFor(ctx context.Context, u *url.URL) (Rules, error) {
	origin := strings.ToLower(u.Scheme + "://" + u.Host)

	c.mu.Lock()
	if ent, ok := c.rules[origin]; ok && c.clock().Before(ent.expires) {
		c.mu.Unlock()
		return ent.rules, nil
	}
	c.mu.Unlock()

	rules, err := c.fetch(ctx, origin+"/robots.txt")
	if err != nil {
		return Rules{}, err
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	c.mu.Lock()
	if c.rules == nil {
		c.rules = make(map[string]cached)
	}
	c.rules[origin] = cached{rules: rules, expires: c.clock().Add(ttl)}
	c.mu.Unlock()
	return rules, nil
}

func (c *Checker) fetch(ctx context.Context, robotsURL string) (Rules, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return Rules{}, fmt.Errorf("new request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Rules{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
	case resp.StatusCode >= 400 && resp.StatusCode <= 499:
		return Rules{}, nil
	default:
		return Rules{}, fmt.Errorf("robots.txt: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Rules{}, fmt.Errorf("read robots: %w", err)
	}
	return Parse(string(data)), nil
}
