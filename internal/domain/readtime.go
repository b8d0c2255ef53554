package domain

import (
	"regexp"
	"strings"
	"unicode"
)

const wordsPerMinute = 200

var htmlTag = regexp.MustCompile(`<[^>]*>`)

// ReadTimeMinutes estimates reading time for markdown or HTML content.
// Tokens without a letter or digit (markdown markup, rules, bullets) are not words.
func ReadTimeMinutes(content string) int {
	text := htmlTag.ReplaceAllString(content, " ")
	words := 0
	for _, token := range strings.Fields(text) {
		if strings.IndexFunc(token, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0 {
			words++
		}
	}
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
