package pack

import "strings"

// ExtractIdentifier scans content line by line for a "key: value" pair (the
// key match is case-insensitive) and returns the value normalized to a
// filesystem-safe token. The second return is false when no such line
// yields a usable token; absence of an identifier is not an error, callers
// substitute a deterministic fallback.
func ExtractIdentifier(content, key string) (string, bool) {
	lowerKey := strings.ToLower(key)
	for _, line := range strings.Split(content, "\n") {
		k, v, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if strings.ToLower(strings.TrimSpace(k)) != lowerKey {
			continue
		}
		if token := NormalizeIdentifier(v); token != "" {
			return token, true
		}
	}
	return "", false
}

// NormalizeIdentifier lowercases s, collapses every run of non-alphanumeric
// characters to a single underscore, and trims leading and trailing
// underscores. "Dr. Jane O'Connor" becomes "dr_jane_o_connor".
func NormalizeIdentifier(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
