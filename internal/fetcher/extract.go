package fetcher

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// ExtractLinks collects the href of every anchor with a non-empty href,
// resolved to an absolute URL against base. Hrefs that fail to parse
// are skipped. The result is de-duplicated and ordered by first
// occurrence.
func ExtractLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	links := make([]string, 0)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})

	return links
}

// VisibleText returns the trimmed text content of the document body
// with script, style and noscript content stripped.
func VisibleText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	return strings.TrimSpace(body.Text())
}

// Title returns the trimmed document title, or "" when absent.
func Title(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// Description returns the content of meta[name=description], or ""
// when absent.
func Description(doc *goquery.Document) string {
	content, _ := doc.Find(`meta[name="description"]`).First().Attr("content")
	return strings.TrimSpace(content)
}

// ArticleText runs readability over the serialized page to isolate the
// main article text.
func ArticleText(html string, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(article.TextContent), nil
}
