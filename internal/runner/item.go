package runner

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"pagegrab/internal/request"
)

// InputType selects how a raw header or cookie input is interpreted.
type InputType string

const (
	// InputJSON expects a JSON object of key/value pairs.
	InputJSON InputType = "json"
	// InputRaw expects raw text in the header or cookie grammar.
	InputRaw InputType = "raw"
)

// Item is one invocation of the extractor as supplied by the host.
// Headers and Cookies each accept either a JSON object or a raw string,
// selected by the corresponding input-type field (auto-detected when
// unset).
type Item struct {
	URL        string          `json:"url"`
	Operation  string          `json:"operation"`
	UseBrowser bool            `json:"useBrowser,omitempty"`
	ProxyURLs  string          `json:"proxyUrls,omitempty"`
	HeaderType InputType       `json:"headerInputType,omitempty"`
	Headers    json.RawMessage `json:"headers,omitempty"`
	CookieType InputType       `json:"cookieInputType,omitempty"`
	Cookies    json.RawMessage `json:"cookies,omitempty"`

	// MaxDepth is accepted for host compatibility but only the seed URL
	// is ever fetched.
	MaxDepth int `json:"maxDepth,omitempty"`
}

// Config normalizes the item into a fetch configuration.
func (it Item) Config() (request.Config, error) {
	if it.URL == "" {
		return request.Config{}, fmt.Errorf("url is required")
	}

	headers, err := decodeMapping(it.Headers, it.HeaderType, request.ParseHeaders)
	if err != nil {
		return request.Config{}, fmt.Errorf("invalid headers input: %w", err)
	}
	cookies, err := decodeMapping(it.Cookies, it.CookieType, request.ParseCookies)
	if err != nil {
		return request.Config{}, fmt.Errorf("invalid cookies input: %w", err)
	}

	return request.Config{
		URL:        it.URL,
		Headers:    headers,
		Cookies:    cookies,
		ProxyURLs:  request.ParseProxyList(it.ProxyURLs),
		UseBrowser: it.UseBrowser,
	}, nil
}

// decodeMapping turns a headers/cookies input into a key/value map. A
// JSON string is run through the raw-text parser; a JSON object is used
// directly. When the input type is unset it is inferred from the JSON
// token.
func decodeMapping(raw json.RawMessage, typ InputType, parse func(string) map[string]string) (map[string]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return map[string]string{}, nil
	}

	if typ == InputRaw || (typ == "" && raw[0] == '"') {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return parse(s), nil
	}

	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

// ParseItems reads a batch from r, one JSON item per line. Blank lines
// are skipped.
func ParseItems(r io.Reader) ([]Item, error) {
	var items []Item
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var item Item
		if err := json.Unmarshal(text, &item); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, item)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}
	return items, nil
}
