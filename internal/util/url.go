package util

import (
	"net/url"
	"strings"
)

// TrimEndpoint strips surrounding whitespace and a single trailing slash.
func TrimEndpoint(rawURL string) string {
	return strings.TrimSuffix(strings.TrimSpace(rawURL), "/")
}

// EndpointHost returns the host of rawURL for logs and audit records, so
// query strings and paths of private endpoints are never persisted.
func EndpointHost(rawURL string) string {
	parsedURL, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsedURL.Host == "" {
		return ""
	}
	return parsedURL.Host
}

// componentUnescaper undoes the QueryEscape output that encodeURIComponent
// leaves literal: spaces are %20 and !'()* stay as they are.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s the way browsers encode a URI component.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
