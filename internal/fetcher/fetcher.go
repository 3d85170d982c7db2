// Package fetcher performs a single page fetch, either via a direct
// HTTP GET or via a headless browser session, and extracts the
// requested data kind from the result.
package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"pagegrab/internal/request"

	"github.com/PuerkitoBio/goquery"
)

// Operation selects what gets extracted from the fetched page.
type Operation string

const (
	OpLinks Operation = "extractLinks"
	OpText  Operation = "extractText"
	OpHTML  Operation = "extractHtml"
)

// ParseOperation validates an operation name.
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case OpLinks, OpText, OpHTML:
		return Operation(s), nil
	}
	return "", fmt.Errorf("unknown operation %q (valid: extractLinks, extractText, extractHtml)", s)
}

// TextMode selects how extractText harvests content.
type TextMode string

const (
	// TextModeBody returns the visible text of the document body.
	TextModeBody TextMode = "body"
	// TextModeArticle runs readability over the page to isolate the
	// main article text, falling back to the body text when the page
	// has no recognizable article.
	TextModeArticle TextMode = "article"
)

// Result holds the extraction output for one page. Title and
// Description are only populated by the text and html operations, and
// are empty when the page has no title or meta description.
type Result struct {
	URL         string   `json:"url"`
	Links       []string `json:"links,omitempty"`
	Text        string   `json:"text,omitempty"`
	HTML        string   `json:"html,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Fetcher dispatches single-page fetches. Exactly one fetch attempt is
// made per call; there are no retries at this layer.
type Fetcher struct {
	// StaticTimeout bounds a direct HTTP fetch. BrowserTimeout bounds a
	// browser-rendered fetch, which needs headroom for rendering and
	// network-idle detection.
	StaticTimeout  time.Duration
	BrowserTimeout time.Duration

	TextMode TextMode

	// ShowUI disables headless mode for the browser path, for debugging.
	ShowUI bool

	proxySeq atomic.Uint64
}

// New returns a Fetcher with the default timeouts.
func New() *Fetcher {
	return &Fetcher{
		StaticTimeout:  30 * time.Second,
		BrowserTimeout: 120 * time.Second,
		TextMode:       TextModeBody,
	}
}

// loadState is the page-load completion signal an operation requires.
// Text and HTML extraction need network idle so that script-driven
// content has rendered; link extraction settles for the load event.
type loadState int

const (
	loadEvent loadState = iota
	loadNetworkIdle
)

// fetchPolicy maps an operation to its load-state requirement and the
// extractor applied to the fetched page.
type fetchPolicy struct {
	load  loadState
	build func(f *Fetcher, pd pageData) (*Result, error)
}

var policies = map[Operation]fetchPolicy{
	OpLinks: {load: loadEvent, build: (*Fetcher).buildLinks},
	OpText:  {load: loadNetworkIdle, build: (*Fetcher).buildText},
	OpHTML:  {load: loadNetworkIdle, build: (*Fetcher).buildHTML},
}

// pageData is the raw outcome of a fetch, independent of which path
// produced it.
type pageData struct {
	base      *url.URL // fetched URL, used to resolve relative links
	html      string   // serialized document
	innerText string   // rendered body text, browser path only
}

// Fetch performs exactly one fetch of cfg.URL and extracts the data
// kind selected by op. Any fetch or navigation error is returned as the
// single failure for this call; no partial results are produced.
func (f *Fetcher) Fetch(ctx context.Context, cfg request.Config, op Operation) (*Result, error) {
	policy, ok := policies[op]
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", op)
	}

	headers, cookies := request.Reconcile(cfg.Headers, cfg.Cookies)

	var pd pageData
	var err error
	if cfg.UseBrowser {
		pd, err = f.fetchRendered(ctx, cfg, headers, cookies, policy.load)
	} else {
		pd, err = f.fetchStatic(ctx, cfg, headers, cookies)
	}
	if err != nil {
		return nil, err
	}

	return policy.build(f, pd)
}

// pickProxy selects one proxy from the list round-robin, or "" when the
// list is empty.
func (f *Fetcher) pickProxy(proxies []string) string {
	if len(proxies) == 0 {
		return ""
	}
	n := f.proxySeq.Add(1) - 1
	return proxies[n%uint64(len(proxies))]
}

func (f *Fetcher) buildLinks(pd pageData) (*Result, error) {
	doc, err := parseDocument(pd.html)
	if err != nil {
		return nil, err
	}
	return &Result{
		URL:   pd.base.String(),
		Links: ExtractLinks(doc, pd.base),
	}, nil
}

func (f *Fetcher) buildText(pd pageData) (*Result, error) {
	doc, err := parseDocument(pd.html)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(pd.innerText)
	if text == "" {
		text = VisibleText(doc)
	}
	if f.TextMode == TextModeArticle {
		if article, err := ArticleText(pd.html, pd.base); err == nil && article != "" {
			text = article
		}
	}

	return &Result{
		URL:         pd.base.String(),
		Text:        text,
		Title:       Title(doc),
		Description: Description(doc),
	}, nil
}

func (f *Fetcher) buildHTML(pd pageData) (*Result, error) {
	doc, err := parseDocument(pd.html)
	if err != nil {
		return nil, err
	}
	return &Result{
		URL:         pd.base.String(),
		HTML:        pd.html,
		Title:       Title(doc),
		Description: Description(doc),
	}, nil
}

func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}
