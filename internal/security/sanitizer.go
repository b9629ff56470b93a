// Package security filters user-supplied message content.
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips every HTML element from message content.
// It is safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a sanitizer backed by bluemonday's strict policy.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// maxPasses bounds how many layers of entity encoding are unwrapped.
const maxPasses = 4

// Sanitize removes markup and returns plain text. The policy escapes text for
// HTML, so its output is decoded for JSON delivery and run through the policy
// again until stable. Entity-encoded markup is stripped like a literal tag.
func (s *Sanitizer) Sanitize(content string) string {
	if content == "" {
		return ""
	}
	out := content
	for pass := 0; pass < maxPasses; pass++ {
		next := html.UnescapeString(s.policy.Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}
