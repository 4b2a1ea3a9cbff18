package logging

import "regexp"

const redactedMark = "[REDACTED]"

// Search API keys end up in URLs and config dumps more often than anyone
// would like, so every log line passes through these patterns.
var credentialPatterns = []*regexp.Regexp{
	// Tavily keys
	regexp.MustCompile(`tvly-[A-Za-z0-9-]{20,}`),
	// OpenAI-style keys; local gateways reuse the format
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`),
	// key/token assignments in dumped config
	regexp.MustCompile(`(?i)api[_-]?key["'\s:=]+[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`(?i)token["'\s:=]+[a-zA-Z0-9_-]{20,}`),
}

// Sanitizer redacts provider credentials from log output.
type Sanitizer struct {
	patterns []*regexp.Regexp
}

// NewSanitizer creates a sanitizer with the default credential patterns.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{patterns: credentialPatterns}
}

// Sanitize replaces anything credential-shaped with a redaction mark.
func (s *Sanitizer) Sanitize(input string) string {
	out := input
	for _, p := range s.patterns {
		out = p.ReplaceAllString(out, redactedMark)
	}
	return out
}
