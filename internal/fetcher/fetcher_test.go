package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"pagegrab/internal/request"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePage = `<html>
<head><title>T</title><meta name="description" content="D"></head>
<body> Hello <a href="/x">x</a><a href="http://y.com">y</a><a href="/x">x again</a></body>
</html>`

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fixturePage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseOperation(t *testing.T) {
	for _, valid := range []string{"extractLinks", "extractText", "extractHtml"} {
		op, err := ParseOperation(valid)
		require.NoError(t, err)
		assert.Equal(t, Operation(valid), op)
	}

	_, err := ParseOperation("extractImages")
	assert.Error(t, err)
}

func TestFetchStaticLinks(t *testing.T) {
	srv := fixtureServer(t)

	f := New()
	res, err := f.Fetch(context.Background(), request.Config{URL: srv.URL}, OpLinks)
	require.NoError(t, err)

	assert.Equal(t, srv.URL, res.URL)
	assert.Equal(t, []string{srv.URL + "/x", "http://y.com"}, res.Links)
}

func TestFetchStaticText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>T</title><meta name="description" content="D"></head><body> Hello </body></html>`))
	}))
	defer srv.Close()

	f := New()
	res, err := f.Fetch(context.Background(), request.Config{URL: srv.URL}, OpText)
	require.NoError(t, err)

	assert.Equal(t, "Hello", res.Text)
	assert.Equal(t, "T", res.Title)
	assert.Equal(t, "D", res.Description)
}

func TestFetchStaticHTMLSharesTitleWithText(t *testing.T) {
	srv := fixtureServer(t)

	f := New()
	htmlRes, err := f.Fetch(context.Background(), request.Config{URL: srv.URL}, OpHTML)
	require.NoError(t, err)
	textRes, err := f.Fetch(context.Background(), request.Config{URL: srv.URL}, OpText)
	require.NoError(t, err)

	require.NotEmpty(t, htmlRes.HTML)
	reparsed, err := parseDocument(htmlRes.HTML)
	require.NoError(t, err)
	assert.Equal(t, textRes.Title, Title(reparsed))
}

func TestFetchStaticSendsHeadersAndCookies(t *testing.T) {
	var gotCookie, gotCustom, gotEncoding string
	var gotNocache bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotCustom = r.Header.Get("X-Custom")
		gotEncoding = r.Header.Get("Accept-Encoding")
		gotNocache = r.URL.Query().Get("nocache") != ""
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	cfg := request.Config{
		URL: srv.URL,
		Headers: map[string]string{
			"X-Custom":        "1",
			"Cookie":          "a=1; b=2",
			"Accept-Encoding": "zstd-custom",
		},
		Cookies: map[string]string{"a": "99"},
	}

	f := New()
	_, err := f.Fetch(context.Background(), cfg, OpText)
	require.NoError(t, err)

	assert.Equal(t, "a=99; b=2", gotCookie, "explicit cookie wins over Cookie header")
	assert.Equal(t, "1", gotCustom)
	assert.NotEqual(t, "zstd-custom", gotEncoding, "caller Accept-Encoding must be dropped")
	assert.True(t, gotNocache, "cache-busting parameter appended")
}

func TestFetchStaticErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New()
	_, err := f.Fetch(context.Background(), request.Config{URL: srv.URL}, OpLinks)
	assert.Error(t, err)
}

func TestFetchStaticUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := srv.URL
	srv.Close()

	f := New()
	_, err := f.Fetch(context.Background(), request.Config{URL: target}, OpLinks)
	assert.Error(t, err)
}

func TestPickProxyRoundRobin(t *testing.T) {
	f := New()
	proxies := []string{"http://p1:8080", "http://p2:8080"}

	assert.Equal(t, "http://p1:8080", f.pickProxy(proxies))
	assert.Equal(t, "http://p2:8080", f.pickProxy(proxies))
	assert.Equal(t, "http://p1:8080", f.pickProxy(proxies))
	assert.Equal(t, "", f.pickProxy(nil))
}
