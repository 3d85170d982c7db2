package request

import (
	"sort"
	"strings"
)

// Reconcile merges a header map and a cookie map into the final header
// and cookie sets used for a fetch:
//
//  1. A "Cookie" header (any casing) is parsed with the cookie grammar
//     and folded into the cookie map, then removed from the headers.
//     Entries already present in the cookie map are kept as-is; the
//     explicit cookie input wins on key collision.
//  2. An "Accept-Encoding" header (any casing) is removed, since the
//     underlying clients decompress transparently.
//
// All other headers pass through with their original casing. The inputs
// are not modified.
func Reconcile(headers, cookies map[string]string) (map[string]string, map[string]string) {
	finalHeaders := make(map[string]string, len(headers))
	finalCookies := make(map[string]string, len(cookies))
	for k, v := range cookies {
		finalCookies[k] = v
	}

	for k, v := range headers {
		switch strings.ToLower(k) {
		case "cookie":
			for name, value := range ParseCookies(v) {
				if _, ok := finalCookies[name]; !ok {
					finalCookies[name] = value
				}
			}
		case "accept-encoding":
			// dropped
		default:
			finalHeaders[k] = v
		}
	}
	return finalHeaders, finalCookies
}

// UserAgent returns the value of a "User-Agent" header regardless of
// casing, and whether one is present. The browser fetch path uses it to
// align the navigator identity with the requested header.
func UserAgent(headers map[string]string) (string, bool) {
	for k, v := range headers {
		if strings.EqualFold(k, "User-Agent") {
			return v, true
		}
	}
	return "", false
}

// CookieHeader serializes a cookie map back into a single Cookie header
// value ("k1=v1; k2=v2"). Order is not significant to servers, but keys
// are emitted deterministically for testability.
func CookieHeader(cookies map[string]string) string {
	if len(cookies) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(cookies))
	for _, k := range sortedKeys(cookies) {
		pairs = append(pairs, k+"="+cookies[k])
	}
	return strings.Join(pairs, "; ")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
