package scrape

import (
	"net/url"
	"strings"
)

// trackingParams are dropped in addition to every utm_* key.
var trackingParams = []string{"gclid", "fbclid", "mc_cid", "mc_eid"}

// CanonicalURL drops the fragment and tracking parameters and lowercases the
// host, so shared links to one recipe fetch and cache as one page. Input that
// does not parse as an absolute URL is returned trimmed and otherwise as is.
func CanonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Host = strings.ToLower(u.Host)
	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			if strings.HasPrefix(k, "utm_") {
				q.Del(k)
			}
		}
		for _, p := range trackingParams {
			q.Del(p)
		}
		u.RawQuery = q.Encode()
	}
	return u.String()
}
