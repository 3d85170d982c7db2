package request

import "strings"

// ParseCookies parses a raw cookie string of the form
// "key1=value1; key2=value2" into a key/value map. Segments without '='
// are dropped; a trailing ';' or extra whitespace has no effect.
func ParseCookies(raw string) map[string]string {
	cookies := make(map[string]string)
	for _, segment := range strings.Split(raw, ";") {
		segment = strings.TrimSpace(segment)
		if !strings.Contains(segment, "=") {
			continue
		}
		parts := strings.SplitN(segment, "=", 2)
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		cookies[key] = strings.TrimSpace(parts[1])
	}
	return cookies
}
