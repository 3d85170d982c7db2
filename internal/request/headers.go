package request

import "strings"

// ParseHeaders parses raw header text into a key/value map. Two grammars
// are supported and auto-detected:
//
//   - Colon form: each line containing ':' is split at the first colon,
//     e.g. "Accept: text/html".
//   - Alternating-line form: used only when no line contains ':'. Lines
//     are consumed in key/value pairs; a trailing unpaired line is
//     dropped.
//
// Keys are trimmed and stripped of surrounding quote characters. Keys
// that are empty, contain a space, or start with ':' (HTTP/2
// pseudo-headers) are discarded. Malformed lines are dropped rather than
// failing the parse.
func ParseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	lines := strings.Split(raw, "\n")

	if hasColonLine(lines) {
		for _, line := range lines {
			if !strings.Contains(line, ":") {
				continue
			}
			parts := strings.SplitN(line, ":", 2)
			key := cleanHeaderKey(parts[0])
			if !validHeaderKey(key) {
				continue
			}
			headers[key] = strings.TrimSpace(parts[1])
		}
		return headers
	}

	// Alternating-line form: key on one line, value on the next.
	for i := 0; i+1 < len(lines); i += 2 {
		key := cleanHeaderKey(lines[i])
		if !validHeaderKey(key) {
			continue
		}
		headers[key] = strings.TrimSpace(lines[i+1])
	}
	return headers
}

func hasColonLine(lines []string) bool {
	for _, line := range lines {
		if strings.Contains(line, ":") {
			return true
		}
	}
	return false
}

func cleanHeaderKey(s string) string {
	s = strings.TrimSpace(s)
	return strings.Trim(s, `"'`)
}

// validHeaderKey reports whether key is usable as an application header
// name. Pseudo-headers (leading ':') belong to the transport and must
// not be sent explicitly.
func validHeaderKey(key string) bool {
	if key == "" {
		return false
	}
	if strings.Contains(key, " ") {
		return false
	}
	if strings.HasPrefix(key, ":") {
		return false
	}
	return true
}
