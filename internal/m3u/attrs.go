package m3u

import (
	"regexp"
	"strings"
)

// Only double-quoted values count; key=value and key='value' are ignored.
var reAttr = regexp.MustCompile(`([a-zA-Z-]+)="([^"]*)"`)

// parseAttributes returns every key="value" pair in s. Keys are case-sensitive and
// a repeated key keeps its last value.
func parseAttributes(s string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range reAttr.FindAllStringSubmatch(s, -1) {
		attrs[m[1]] = m[2]
	}
	return attrs
}

// displayName returns the trimmed text after the last comma of an #EXTINF remainder,
// or DefaultName when there is none.
func displayName(s string) string {
	i := strings.LastIndex(s, ",")
	if i == -1 {
		return DefaultName
	}
	if name := strings.TrimSpace(s[i+1:]); name != "" {
		return name
	}
	return DefaultName
}

// firstNonEmpty returns the value of the first key present with a non-empty value.
func firstNonEmpty(attrs map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := attrs[k]; v != "" {
			return v
		}
	}
	return ""
}
