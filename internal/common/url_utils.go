package common

import (
	"errors"
	"net/url"
	"strings"
)

// NormalizePageURL canonicalizes a page URL for use as an embedding-store key.
// Fragments never change page content, so they are dropped; the query string is
// kept because many sites route content through it. Trailing slashes on the
// path are trimmed so "/docs" and "/docs/" share one embedding set.
func NormalizePageURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("url is empty")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", err
	}

	parsed.Fragment = ""
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String(), nil
}
