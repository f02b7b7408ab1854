// Package security provides content sanitization for user-authored input.
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans user-authored post fields before storage. Post bodies keep
// a small allowlist of formatting tags; titles and link labels are reduced to
// plain text. Sanitization happens at write time so every reader sees the
// same cleaned content.
type Sanitizer struct {
	content *bluemonday.Policy
	strict  *bluemonday.Policy
}

// NewSanitizer builds a Sanitizer with the post content policy.
// The content policy allows basic formatting (p, br, ul, ol, li, blockquote,
// pre, code, strong, em) and links with forced rel="noopener noreferrer".
// Everything else, scripts and event handlers included, is stripped.
func NewSanitizer() *Sanitizer {
	content := bluemonday.NewPolicy()
	content.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)
	content.AllowAttrs("href").OnElements("a")
	content.AllowStandardURLs()
	content.AddTargetBlankToFullyQualifiedLinks(true)
	content.RequireNoReferrerOnLinks(true)

	return &Sanitizer{
		content: content,
		strict:  bluemonday.StrictPolicy(),
	}
}

// Content sanitizes a post body, keeping allowlisted formatting tags.
func (s *Sanitizer) Content(raw string) string {
	return strings.TrimSpace(s.content.Sanitize(raw))
}

// Plain strips all markup, leaving text only. Used for titles and links.
func (s *Sanitizer) Plain(raw string) string {
	return strings.TrimSpace(s.strict.Sanitize(raw))
}
