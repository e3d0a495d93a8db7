package content

import "strings"

// SplitTags turns a comma-delimited tag string into trimmed tags.
// Empty pieces are dropped, so "a, ,b" yields ["a", "b"].
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
