// Package links rewrites outbound shopping URLs with an affiliate tag
// and builds search links for identified parts.
package links

import (
	"net/url"
	"strings"
)

// Rewriter applies an affiliate tag to supported shop URLs. A zero
// Rewriter (empty tag) passes URLs through untouched.
type Rewriter struct {
	Tag string
}

// Rewrite sets the affiliate tag on Amazon product URLs. Other hosts
// and unparseable URLs are returned unchanged.
func (r Rewriter) Rewrite(raw string) string {
	if r.Tag == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || !isAmazonHost(u.Hostname()) {
		return raw
	}
	q := u.Query()
	q.Set("tag", r.Tag)
	u.RawQuery = q.Encode()
	return u.String()
}

// SearchLink builds a tagged Amazon search URL for a part name,
// optionally prefixed with the manufacturer guess.
func (r Rewriter) SearchLink(partName, manufacturer string) string {
	query := strings.TrimSpace(partName)
	if m := strings.TrimSpace(manufacturer); m != "" && !strings.EqualFold(m, "unknown") {
		query = m + " " + query
	}
	q := url.Values{}
	q.Set("k", query)
	if r.Tag != "" {
		q.Set("tag", r.Tag)
	}
	return "https://www.amazon.com/s?" + q.Encode()
}

func isAmazonHost(host string) bool {
	host = strings.ToLower(host)
	return host == "amazon.com" || strings.HasSuffix(host, ".amazon.com")
}
