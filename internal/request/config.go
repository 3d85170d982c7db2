// Package request assembles per-item fetch configuration from the raw
// header/cookie/proxy inputs supplied by the caller.
package request

import "strings"

// Config is the fully reconciled configuration for a single page fetch.
// Build it once per item and treat it as read-only afterwards.
type Config struct {
	URL        string
	Headers    map[string]string
	Cookies    map[string]string
	ProxyURLs  []string
	UseBrowser bool
}

// ParseProxyList splits a newline-separated proxy list into individual
// proxy URLs, dropping empty lines.
func ParseProxyList(raw string) []string {
	var proxies []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			proxies = append(proxies, line)
		}
	}
	return proxies
}
