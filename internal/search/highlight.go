package search

import (
	"regexp"

	"github.com/fatih/color"
)

var highlightColor = color.New(color.BgYellow, color.FgBlack)

// Highlight marks every case-insensitive occurrence of query in text for
// terminal output.
func Highlight(text, query string) string {
	return HighlightFunc(text, query, highlightColor.Sprint)
}

// HighlightFunc wraps every case-insensitive occurrence of query in text with
// wrap. Empty text or query returns text unchanged.
func HighlightFunc(text, query string, wrap func(a ...any) string) string {
	if text == "" || query == "" {
		return text
	}
	pattern := regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
	return pattern.ReplaceAllStringFunc(text, func(m string) string {
		return wrap(m)
	})
}
