package security

import (
	"regexp"
	"strings"
	"unicode"

	apperrors "user-console/pkg/errors"
)

// MaxSearchQueryLength is the longest accepted search term, in runes.
const MaxSearchQueryLength = 100

// suspiciousPatterns reject search terms that look like SQL or script injection.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(union|select|insert|update|delete|drop|alter|exec|execute)\b`),
	regexp.MustCompile(`(?i)\b(or|and)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile(`(--|/\*|\*/)`),
	regexp.MustCompile(`(?i)\b(waitfor|sleep|benchmark)\b`),
	regexp.MustCompile(`(?i)(<script|javascript:|vbscript:|onload=|onerror=)`),
}

// ValidateSearchQuery trims a free-text search term used to filter users by
// name, email or company, and rejects anything outside a safe character set.
func ValidateSearchQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	if len([]rune(query)) > MaxSearchQueryLength {
		return "", apperrors.NewValidationError("query", "search query too long")
	}

	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(query) {
			return "", apperrors.NewValidationError("query", "search query contains invalid characters")
		}
	}

	for _, r := range query {
		if !isValidSearchChar(r) {
			return "", apperrors.NewValidationError("query", "search query contains invalid characters")
		}
	}

	return query, nil
}

func isValidSearchChar(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) {
		return true
	}
	switch r {
	case ' ', '-', '_', '.', '@', '+', '\'', '%':
		return true
	}
	return false
}

// EscapeLike escapes LIKE wildcards so they match literally. Use with
// ESCAPE '\'.
func EscapeLike(query string) string {
	query = strings.ReplaceAll(query, `\`, `\\`)
	query = strings.ReplaceAll(query, "%", `\%`)
	return strings.ReplaceAll(query, "_", `\_`)
}

// ContainsPattern returns a LIKE pattern matching values that contain query.
func ContainsPattern(query string) string {
	return "%" + EscapeLike(strings.ToLower(query)) + "%"
}
