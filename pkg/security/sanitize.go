package security

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

// Parameterized queries are the real defense; these patterns exist to scrub
// obviously hostile payloads out of logs and free-text fields.
var sqlInjectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(union\s+select|insert\s+into|delete\s+from|drop\s+table|update\s+.*set)`),
	regexp.MustCompile(`(?i)(exec\s*\(|execute\s*\(|script\s*>|javascript:)`),
}

var xssPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?i)<iframe[^>]*>.*?</iframe>`),
	regexp.MustCompile(`(?i)on\w+\s*=`),
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)<embed[^>]*>`),
	regexp.MustCompile(`(?i)<object[^>]*>`),
}

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeString trims the input and drops null bytes and control
// characters (newlines and tabs survive).
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	var out strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			out.WriteRune(r)
		}
	}
	return out.String()
}

// SanitizeInput is the general-purpose scrubber applied to user-supplied
// strings: control characters, XSS and SQL fragments are removed, whitespace
// collapsed, and the result optionally truncated.
func SanitizeInput(input string, maxLength int) string {
	input = SanitizeString(input)

	for _, pattern := range xssPatterns {
		input = pattern.ReplaceAllString(input, "")
	}
	input = html.EscapeString(input)

	for _, pattern := range sqlInjectionPatterns {
		input = pattern.ReplaceAllString(input, "")
	}

	input = strings.TrimSpace(whitespacePattern.ReplaceAllString(input, " "))
	if maxLength > 0 && len(input) > maxLength {
		input = input[:maxLength]
	}
	return input
}

// StripHTMLTags removes every HTML tag from the input.
func StripHTMLTags(input string) string {
	return htmlTagPattern.ReplaceAllString(input, "")
}

// ContainsSQLInjection reports whether the input matches a known SQL
// injection fragment.
func ContainsSQLInjection(input string) bool {
	for _, pattern := range sqlInjectionPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}

// ContainsXSS reports whether the input matches a known XSS vector.
func ContainsXSS(input string) bool {
	for _, pattern := range xssPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}
