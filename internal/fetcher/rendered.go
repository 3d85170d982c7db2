package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"pagegrab/internal/browser"
	"pagegrab/internal/request"

	"github.com/go-rod/rod/lib/proto"
)

const (
	viewportWidth  = 1920
	viewportHeight = 1080
)

// fetchRendered fetches cfg.URL through a fresh headless browser
// session so that client-rendered content is executed before
// extraction. The session is torn down before returning.
func (f *Fetcher) fetchRendered(ctx context.Context, cfg request.Config, headers, cookies map[string]string, load loadState) (pageData, error) {
	base, err := url.Parse(cfg.URL)
	if err != nil {
		return pageData{}, fmt.Errorf("invalid url %q: %w", cfg.URL, err)
	}

	b, err := browser.New(browser.Config{
		ProxyURL: f.pickProxy(cfg.ProxyURLs),
		Headless: !f.ShowUI,
	})
	if err != nil {
		return pageData{}, fmt.Errorf("failed to create browser: %w", err)
	}
	defer b.Close()

	page, err := b.NewPage()
	if err != nil {
		return pageData{}, err
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(f.BrowserTimeout)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  viewportWidth,
		Height: viewportHeight,
	}); err != nil {
		return pageData{}, fmt.Errorf("failed to set viewport: %w", err)
	}

	// Align the navigator identity with an explicit User-Agent header,
	// otherwise the rendered fetch is trivially flagged as a mismatched
	// automation client.
	if ua, ok := request.UserAgent(headers); ok {
		if err := (proto.NetworkSetUserAgentOverride{UserAgent: ua}).Call(page); err != nil {
			return pageData{}, fmt.Errorf("failed to override user agent: %w", err)
		}
	}

	if len(headers) > 0 {
		headerList := make([]string, 0, len(headers)*2)
		for k, v := range headers {
			headerList = append(headerList, k, v)
		}
		cleanup, err := page.SetExtraHeaders(headerList)
		if err != nil {
			return pageData{}, fmt.Errorf("failed to set headers: %w", err)
		}
		defer cleanup()
	}

	if len(cookies) > 0 {
		params := make([]*proto.NetworkCookieParam, 0, len(cookies))
		for name, value := range cookies {
			params = append(params, &proto.NetworkCookieParam{
				Name:  name,
				Value: value,
				URL:   cfg.URL,
			})
		}
		if err := page.SetCookies(params); err != nil {
			return pageData{}, fmt.Errorf("failed to set cookies: %w", err)
		}
	}

	if err := page.Navigate(cfg.URL); err != nil {
		return pageData{}, fmt.Errorf("failed to navigate: %w", err)
	}

	if err := page.WaitLoad(); err != nil {
		return pageData{}, fmt.Errorf("failed to wait for page load: %w", err)
	}

	// Text and HTML extraction additionally wait for network idle so
	// that script-driven pages finish populating dynamic content.
	if load == loadNetworkIdle {
		wait := page.WaitRequestIdle(
			500*time.Millisecond, nil, nil,
			[]proto.NetworkResourceType{proto.NetworkResourceTypeImage, proto.NetworkResourceTypeMedia},
		)
		wait()
	}

	html, err := page.HTML()
	if err != nil {
		return pageData{}, fmt.Errorf("failed to get page HTML: %w", err)
	}

	innerText, err := page.Eval(`() => document.body ? document.body.innerText : ""`)
	if err != nil {
		return pageData{}, fmt.Errorf("failed to get body text: %w", err)
	}

	return pageData{
		base:      base,
		html:      html,
		innerText: innerText.Value.Str(),
	}, nil
}
