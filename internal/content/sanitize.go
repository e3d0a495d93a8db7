package content

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxTextPasses bounds how many layers of entity encoding Text unwraps.
const maxTextPasses = 8

// Sanitizer reduces user-supplied single-line fields to plain text.
// Article bodies are stored as supplied and are not passed through it.
type Sanitizer struct {
	plain *bluemonday.Policy
}

// NewSanitizer creates a Sanitizer backed by bluemonday's strict policy.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{plain: bluemonday.StrictPolicy()}
}

// Text removes all markup from a single-line field and decodes entities,
// so "Q&amp;A" becomes "Q&A". Decoding can surface new markup
// ("&lt;b&gt;" decodes to "<b>"), so the field is stripped again until
// it stops changing.
func (s *Sanitizer) Text(text string) string {
	for i := 0; i < maxTextPasses; i++ {
		next := html.UnescapeString(s.plain.Sanitize(text))
		if next == text {
			return strings.TrimSpace(next)
		}
		text = next
	}
	// Still changing: drop anything that could open a tag.
	return strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(text))
}

// Tags sanitizes each tag and drops the ones left empty.
func (s *Sanitizer) Tags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if clean := s.Text(tag); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
