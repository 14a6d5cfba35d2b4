package logging

import (
	"fmt"
	"regexp"
)

// Sanitizer redacts sensitive information from log messages.
type Sanitizer struct {
	rules    []rule
	redacted string
}

// rule replaces matches of re. An empty repl means the whole match becomes
// the redaction placeholder.
type rule struct {
	re   *regexp.Regexp
	repl string
}

// NewSanitizer creates a sanitizer with default patterns.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		rules:    defaultRules(),
		redacted: "[REDACTED]",
	}
}

func defaultRules() []rule {
	return []rule{
		// Password inside a connection URL: keep scheme, user and host.
		{re: regexp.MustCompile(`(?i)\b([a-z][a-z0-9+.-]*://[^:/@\s]+):[^@\s]+@`), repl: "${1}:%s@"},
		// AWS Access Key
		{re: regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
		// AWS Secret Key (looser pattern)
		{re: regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key["'\s:=]+[A-Za-z0-9/+=]{40}`)},
		// AWS session token handed to lambda runtimes
		{re: regexp.MustCompile(`(?i)aws[_-]?session[_-]?token["'\s:=]+[A-Za-z0-9/+=]{20,}`)},
		// Generic Bearer tokens
		{re: regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`)},
		// Generic API keys
		{re: regexp.MustCompile(`(?i)api[_-]?key["'\s:=]+[a-zA-Z0-9_-]{20,}`)},
		// Generic secrets
		{re: regexp.MustCompile(`(?i)secret["'\s:=]+[a-zA-Z0-9_-]{20,}`)},
		// Generic passwords, including keyword/value DSNs
		{re: regexp.MustCompile(`(?i)password["'\s:=]+[^\s"']{8,}`)},
		// Generic tokens
		{re: regexp.MustCompile(`(?i)token["'\s:=]+[a-zA-Z0-9_-]{20,}`)},
	}
}

// Sanitize redacts sensitive information from a string.
func (s *Sanitizer) Sanitize(input string) string {
	result := input
	for _, r := range s.rules {
		if r.repl == "" {
			result = r.re.ReplaceAllLiteralString(result, s.redacted)
			continue
		}
		result = r.re.ReplaceAllString(result, fmt.Sprintf(r.repl, s.redacted))
	}
	return result
}

// SanitizeMap redacts values in a map.
func (s *Sanitizer) SanitizeMap(m map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for k, v := range m {
		switch val := v.(type) {
		case string:
			result[k] = s.Sanitize(val)
		case map[string]interface{}:
			result[k] = s.SanitizeMap(val)
		default:
			result[k] = v
		}
	}
	return result
}
