package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcileCookieHeaderMerged(t *testing.T) {
	headers := map[string]string{
		"Cookie": "a=1; b=2",
		"Accept": "text/html",
	}

	finalHeaders, finalCookies := Reconcile(headers, map[string]string{})

	assert.Equal(t, map[string]string{"Accept": "text/html"}, finalHeaders)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, finalCookies)
}

func TestReconcileExplicitCookieWins(t *testing.T) {
	headers := map[string]string{"cookie": "a=1; b=2"}
	cookies := map[string]string{"a": "99"}

	finalHeaders, finalCookies := Reconcile(headers, cookies)

	assert.Empty(t, finalHeaders)
	assert.Equal(t, map[string]string{"a": "99", "b": "2"}, finalCookies)
}

func TestReconcileStripsAcceptEncoding(t *testing.T) {
	headers := map[string]string{
		"Accept-Encoding": "gzip, br",
		"ACCEPT-ENCODING": "gzip",
		"Accept":          "*/*",
	}

	finalHeaders, _ := Reconcile(headers, nil)

	assert.Equal(t, map[string]string{"Accept": "*/*"}, finalHeaders)
}

func TestReconcileKeepsOriginalCasing(t *testing.T) {
	headers := map[string]string{"x-CuStOm-Header": "v"}

	finalHeaders, _ := Reconcile(headers, nil)

	assert.Equal(t, map[string]string{"x-CuStOm-Header": "v"}, finalHeaders)
}

func TestReconcileDoesNotMutateInputs(t *testing.T) {
	headers := map[string]string{"Cookie": "a=1"}
	cookies := map[string]string{"b": "2"}

	Reconcile(headers, cookies)

	assert.Equal(t, map[string]string{"Cookie": "a=1"}, headers)
	assert.Equal(t, map[string]string{"b": "2"}, cookies)
}

func TestUserAgent(t *testing.T) {
	ua, ok := UserAgent(map[string]string{"user-agent": "custom-ua"})
	assert.True(t, ok)
	assert.Equal(t, "custom-ua", ua)

	_, ok = UserAgent(map[string]string{"Accept": "*/*"})
	assert.False(t, ok)
}

func TestCookieHeader(t *testing.T) {
	assert.Equal(t, "", CookieHeader(nil))
	assert.Equal(t, "a=1; b=2", CookieHeader(map[string]string{"b": "2", "a": "1"}))
}
