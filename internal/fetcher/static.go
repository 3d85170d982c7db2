package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"pagegrab/internal/request"

	"github.com/google/uuid"
)

// fetchStatic issues a single HTTP GET for cfg.URL with the reconciled
// headers and cookies, optionally through one of the configured
// proxies. A uniquifying query parameter is appended so that
// intermediate caches cannot serve a stale response.
func (f *Fetcher) fetchStatic(ctx context.Context, cfg request.Config, headers, cookies map[string]string) (pageData, error) {
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return pageData{}, fmt.Errorf("invalid url %q: %w", cfg.URL, err)
	}

	client, err := f.staticClient(cfg.ProxyURLs)
	if err != nil {
		return pageData{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cacheBust(base), nil)
	if err != nil {
		return pageData{}, fmt.Errorf("failed to build request: %w", err)
	}

	for k, v := range headers {
		switch {
		case strings.EqualFold(k, "host"):
			req.Host = v
		case strings.EqualFold(k, "user-agent"):
			req.Header.Set("User-Agent", v)
		default:
			// Direct assignment keeps the caller's original casing.
			req.Header[k] = []string{v}
		}
	}
	if ch := request.CookieHeader(cookies); ch != "" {
		req.Header.Set("Cookie", ch)
	}

	resp, err := client.Do(req)
	if err != nil {
		return pageData{}, fmt.Errorf("failed to fetch %s: %w", cfg.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return pageData{}, fmt.Errorf("failed to fetch %s: status %d", cfg.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return pageData{}, fmt.Errorf("failed to read response body: %w", err)
	}

	return pageData{base: base, html: string(body)}, nil
}

// staticClient builds an HTTP client bound to this fetch, routed through
// the next proxy in the list when one is configured.
func (f *Fetcher) staticClient(proxies []string) (*http.Client, error) {
	client := &http.Client{Timeout: f.StaticTimeout}

	if proxy := f.pickProxy(proxies); proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url %q: %w", proxy, err)
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return client, nil
}

// cacheBust appends a throwaway query parameter so every fetch is
// unique from the point of view of intermediate caches. The original
// URL (without the parameter) remains the base for link resolution.
func cacheBust(base *url.URL) string {
	busted := *base
	q := busted.Query()
	q.Set("nocache", uuid.NewString())
	busted.RawQuery = q.Encode()
	return busted.String()
}
