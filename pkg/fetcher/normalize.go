package fetcher

import (
	"net/url"
	"strings"
)

// NormalizeURL canonicalizes a URL for both the fetcher's own dedup set and
// the cache's lookup key: lowercase scheme and host, strip the default port
// for the scheme, and drop the fragment. Two URLs differing only in
// fragment or casing normalize to the same string.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()

	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		u.Host = host + ":" + port
	} else {
		u.Host = host
	}

	u.Fragment = ""
	return u.String(), nil
}

// SameRegisteredDomain reports whether two absolute URLs share a host. It is
// a plain hostname comparison, not a public-suffix-aware eTLD+1 check,
// matching the crawler's own domain scoping (a and b are always either the
// seed or a link resolved against it).
func SameRegisteredDomain(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Hostname(), ub.Hostname())
}
